package service

import (
	"errors"

	"shop_backend/internal/domain/product/model"
	"shop_backend/internal/domain/product/repository"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/response"

	"gorm.io/gorm"
)

// CategoryInput 创建/更新品类的输入
type CategoryInput struct {
	Name        string
	Description string
}

// CategoryService 品类服务接口（管理端）
type CategoryService interface {
	GetCategoryStats() ([]model.CategoryStat, error)
	CreateCategory(input CategoryInput) (*model.Category, error)
	UpdateCategory(id string, input CategoryInput) (*model.Category, error)
	DeleteCategory(id string) error
}

// categoryService 实现
type categoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建品类服务
func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) GetCategoryStats() ([]model.CategoryStat, error) {
	return s.repo.GetAllWithCounts()
}

func (s *categoryService) CreateCategory(input CategoryInput) (*model.Category, error) {
	if input.Name == "" {
		return nil, apperr.New(apperr.KindValidation, "Category name is required")
	}

	if _, err := s.repo.GetByName(input.Name); err == nil {
		return nil, apperr.New(apperr.KindConflict, "Category already exists").
			WithCode(response.ErrCategoryExists)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &model.Category{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.repo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory 更新品类，改名时级联更新该品类下全部商品
func (s *categoryService) UpdateCategory(id string, input CategoryInput) (*model.Category, error) {
	if input.Name == "" {
		return nil, apperr.New(apperr.KindValidation, "Category name is required")
	}

	category, err := s.getCategory(id)
	if err != nil {
		return nil, err
	}

	if input.Name != category.Name {
		if _, err := s.repo.GetByName(input.Name); err == nil {
			return nil, apperr.New(apperr.KindConflict, "Category already exists").
				WithCode(response.ErrCategoryExists)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	oldName := category.Name
	category.Name = input.Name
	category.Description = input.Description

	if err := s.repo.Update(category, oldName); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory 删除品类，仍有商品挂靠时拒绝
func (s *categoryService) DeleteCategory(id string) error {
	category, err := s.getCategory(id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountProducts(category.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Newf(apperr.KindConflict,
			"Category %s still has %d products", category.Name, count).
			WithCode(response.ErrCategoryInUse)
	}

	return s.repo.Delete(category)
}

func (s *categoryService) getCategory(id string) (*model.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "Category not found").
				WithCode(response.ErrCategoryNotFound)
		}
		return nil, err
	}
	return category, nil
}
