package repository

import (
	"shop_backend/internal/domain/user/model"
	productModel "shop_backend/internal/domain/product/model"

	"gorm.io/gorm"
)

// UserRepository 接口定义
type UserRepository interface {
	Create(user *model.User) error
	GetByID(id string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	GetList(offset, limit int) ([]model.User, int64, error)
	Update(user *model.User) error
	Delete(user *model.User) error

	AddWishlistItem(userID, productID string) error
	RemoveWishlistItem(userID, productID string) error
	GetWishlist(userID string) ([]productModel.Product, error)
	WishlistContains(userID, productID string) (bool, error)
}

// userRepository 实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建新的仓库实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(id string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
func (r *userRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetList 获取用户列表（分页）
func (r *userRepository) GetList(offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	if err := r.db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update 更新用户
func (r *userRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

// Delete 删除用户
func (r *userRepository) Delete(user *model.User) error {
	return r.db.Delete(user).Error
}

// AddWishlistItem 添加收藏
func (r *userRepository) AddWishlistItem(userID, productID string) error {
	return r.db.Create(&model.WishlistItem{UserID: userID, ProductID: productID}).Error
}

// RemoveWishlistItem 取消收藏
func (r *userRepository) RemoveWishlistItem(userID, productID string) error {
	return r.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistItem{}).Error
}

// GetWishlist 获取收藏的商品列表
func (r *userRepository) GetWishlist(userID string) ([]productModel.Product, error) {
	var products []productModel.Product
	err := r.db.
		Joins("JOIN wishlist_items ON wishlist_items.product_id = products.id AND wishlist_items.deleted_at IS NULL").
		Where("wishlist_items.user_id = ?", userID).
		Order("wishlist_items.created_at DESC").
		Find(&products).Error
	return products, err
}

// WishlistContains 判断是否已收藏
func (r *userRepository) WishlistContains(userID, productID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}
