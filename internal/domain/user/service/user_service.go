package service

import (
	"errors"

	"shop_backend/internal/domain/user/model"
	"shop_backend/internal/domain/user/repository"
	productModel "shop_backend/internal/domain/product/model"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/response"
	"shop_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 用户服务接口
type UserService interface {
	Register(name, email, password string) (*model.User, string, error)
	Login(email, password string) (*model.User, string, error)
	GetUser(id string) (*model.User, error)
	GetUsers(page, limit int) ([]model.User, int64, error)
	CreateAdmin(name, email, password string) (*model.User, error)
	DeleteUser(id string) error

	AddToWishlist(userID, productID string) error
	RemoveFromWishlist(userID, productID string) error
	GetWishlist(userID string) ([]productModel.Product, error)
}

// userService 实现
type userService struct {
	repo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// Register 凭据注册，邮箱唯一
func (s *userService) Register(name, email, password string) (*model.User, string, error) {
	if _, err := s.repo.GetByEmail(email); err == nil {
		return nil, "", apperr.New(apperr.KindConflict, "User already exists with this email").
			WithCode(response.ErrUserExists)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     model.RoleUser,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, "", err
	}

	token, _, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login 凭据登录
// 用户不存在和密码错误返回同一错误，避免探测已注册邮箱
func (s *userService) Login(email, password string) (*model.User, string, error) {
	invalid := apperr.New(apperr.KindForbidden, "Invalid credentials").
		WithCode(response.ErrAuthFailed)

	user, err := s.repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", invalid
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", invalid
	}

	token, _, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetUser 获取单个用户
func (s *userService) GetUser(id string) (*model.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "User not found").
				WithCode(response.ErrUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

// GetUsers 获取用户列表（分页）
func (s *userService) GetUsers(page, limit int) ([]model.User, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.repo.GetList(offset, limit)
}

// CreateAdmin 创建管理员账号
func (s *userService) CreateAdmin(name, email, password string) (*model.User, error) {
	if _, err := s.repo.GetByEmail(email); err == nil {
		return nil, apperr.New(apperr.KindConflict, "User already exists with this email").
			WithCode(response.ErrUserExists)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     model.RoleAdmin,
	}
	if err := s.repo.Create(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// DeleteUser 删除用户（软删除）
func (s *userService) DeleteUser(id string) error {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "User not found").
				WithCode(response.ErrUserNotFound)
		}
		return err
	}
	return s.repo.Delete(user)
}

// AddToWishlist 添加收藏，重复添加视为冲突
func (s *userService) AddToWishlist(userID, productID string) error {
	exists, err := s.repo.WishlistContains(userID, productID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.New(apperr.KindConflict, "Product already in wishlist")
	}
	return s.repo.AddWishlistItem(userID, productID)
}

// RemoveFromWishlist 取消收藏
func (s *userService) RemoveFromWishlist(userID, productID string) error {
	return s.repo.RemoveWishlistItem(userID, productID)
}

// GetWishlist 获取收藏商品
func (s *userService) GetWishlist(userID string) ([]productModel.Product, error) {
	return s.repo.GetWishlist(userID)
}
