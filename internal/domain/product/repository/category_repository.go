package repository

import (
	"shop_backend/internal/domain/product/model"

	"gorm.io/gorm"
)

// CategoryRepository 品类仓库接口
type CategoryRepository interface {
	Create(category *model.Category) error
	GetByID(id string) (*model.Category, error)
	GetByName(name string) (*model.Category, error)
	GetAll() ([]model.Category, error)
	// GetAllWithCounts 品类列表及每类商品数/缺货数
	GetAllWithCounts() ([]model.CategoryStat, error)
	// Update 更新品类；改名时同一事务内级联更新商品的 category 字段
	Update(category *model.Category, oldName string) error
	Delete(category *model.Category) error
	CountProducts(name string) (int64, error)
}

// categoryRepository 实现
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建品类仓库
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *model.Category) error {
	return r.db.Create(category).Error
}

func (r *categoryRepository) GetByID(id string) (*model.Category, error) {
	var category model.Category
	if err := r.db.Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetByName(name string) (*model.Category, error) {
	var category model.Category
	if err := r.db.Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetAll() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetAllWithCounts 左连接商品表统计每个品类的在售与缺货数量
func (r *categoryRepository) GetAllWithCounts() ([]model.CategoryStat, error) {
	var stats []model.CategoryStat
	err := r.db.Raw(`
		SELECT c.name,
		       c.description,
		       COUNT(p.id) AS product_count,
		       COUNT(p.id) FILTER (WHERE p.stock = 0) AS out_of_stock_count
		FROM categories c
		LEFT JOIN products p ON p.category = c.name AND p.deleted_at IS NULL
		WHERE c.deleted_at IS NULL
		GROUP BY c.name, c.description
		ORDER BY c.name ASC`).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *categoryRepository) Update(category *model.Category, oldName string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(category).Error; err != nil {
			return err
		}
		if category.Name != oldName {
			return tx.Model(&model.Product{}).
				Where("category = ?", oldName).
				UpdateColumn("category", category.Name).Error
		}
		return nil
	})
}

func (r *categoryRepository) Delete(category *model.Category) error {
	return r.db.Delete(category).Error
}

func (r *categoryRepository) CountProducts(name string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Where("category = ?", name).Count(&count).Error
	return count, err
}
