package repository

import (
	"shop_backend/internal/domain/product/model"

	"gorm.io/gorm"
)

// ListFilter 商品列表过滤条件
type ListFilter struct {
	Category string
	Search   string // 商品名模糊匹配
	MinPrice *float64
	MaxPrice *float64
	Sort     string // price_asc / price_desc / newest
}

// ProductRepository 接口定义
type ProductRepository interface {
	Create(product *model.Product) error
	GetByID(id string) (*model.Product, error)
	// GetByIDTx 在指定事务内读取商品，订单创建的校验读取使用
	GetByIDTx(tx *gorm.DB, id string) (*model.Product, error)
	GetList(filter ListFilter, offset, limit int) ([]model.Product, int64, error)
	Update(product *model.Product) error
	Delete(product *model.Product) error

	// ReserveStock 条件扣减库存：stock >= qty 时原子扣减，返回是否扣减成功。
	// 必须在传入的事务句柄上执行，配合订单创建的整体回滚。
	ReserveStock(tx *gorm.DB, productID string, qty int) (bool, error)
	UpdateStock(productID string, stock int) error
}

// productRepository 实现
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建新的仓库实例
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create 创建商品
func (r *productRepository) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

// GetByID 根据ID获取商品
func (r *productRepository) GetByID(id string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByIDTx 在事务内根据ID获取商品
func (r *productRepository) GetByIDTx(tx *gorm.DB, id string) (*model.Product, error) {
	var product model.Product
	if err := tx.Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetList 获取商品列表（过滤+分页）
func (r *productRepository) GetList(filter ListFilter, offset, limit int) ([]model.Product, int64, error) {
	query := r.db.Model(&model.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var products []model.Product
	if err := query.Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Update 更新商品
func (r *productRepository) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

// Delete 删除商品（软删除）
func (r *productRepository) Delete(product *model.Product) error {
	return r.db.Delete(product).Error
}

// ReserveStock 条件扣减库存
func (r *productRepository) ReserveStock(tx *gorm.DB, productID string, qty int) (bool, error) {
	result := tx.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateStock 直接设置库存（管理端补货/盘点）
func (r *productRepository) UpdateStock(productID string, stock int) error {
	status := model.StatusAvailable
	if stock <= 0 {
		status = model.StatusOutOfStock
	}
	return r.db.Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"stock":  stock,
			"status": status,
		}).Error
}
