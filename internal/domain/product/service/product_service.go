package service

import (
	"errors"

	"shop_backend/internal/domain/product/model"
	"shop_backend/internal/domain/product/repository"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/response"

	"gorm.io/gorm"
)

// ProductInput 创建/更新商品的输入
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Sizes       []string
	ImageURL    string
	Stock       int
}

// StockItem 批量库存调整条目
type StockItem struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Stock     int    `json:"stock" binding:"min=0"`
}

// ProductService 商品服务接口
type ProductService interface {
	GetProducts(filter repository.ListFilter, page, limit int) ([]model.Product, int64, error)
	GetProduct(id string) (*model.Product, error)
	GetCategories() ([]string, error)
	CreateProduct(input ProductInput) (*model.Product, error)
	UpdateProduct(id string, input ProductInput) (*model.Product, error)
	DeleteProduct(id string) error
	BulkUpdateInventory(items []StockItem) error
}

// productService 实现
type productService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categories repository.CategoryRepository) ProductService {
	return &productService{repo: repo, categories: categories}
}

func (s *productService) GetProducts(filter repository.ListFilter, page, limit int) ([]model.Product, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.repo.GetList(filter, offset, limit)
}

func (s *productService) GetProduct(id string) (*model.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "Product not found").
				WithCode(response.ErrProductNotFound)
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetCategories() ([]string, error) {
	categories, err := s.categories.GetAll()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names, nil
}

func (s *productService) validate(input ProductInput) error {
	if _, err := s.categories.GetByName(input.Category); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindValidation, "Invalid category")
		}
		return err
	}
	if input.Price < 0 {
		return apperr.New(apperr.KindValidation, "Price cannot be negative")
	}
	if input.Stock < 0 {
		return apperr.New(apperr.KindValidation, "Stock cannot be negative")
	}
	return nil
}

func (s *productService) CreateProduct(input ProductInput) (*model.Product, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Sizes:       input.Sizes,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) UpdateProduct(id string, input ProductInput) (*model.Product, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Category = input.Category
	product.Sizes = input.Sizes
	product.ImageURL = input.ImageURL
	product.Stock = input.Stock

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) DeleteProduct(id string) error {
	product, err := s.GetProduct(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(product)
}

// BulkUpdateInventory 批量调整库存，先校验全部商品存在再逐条更新
func (s *productService) BulkUpdateInventory(items []StockItem) error {
	for _, item := range items {
		if _, err := s.GetProduct(item.ProductID); err != nil {
			return err
		}
	}
	for _, item := range items {
		if err := s.repo.UpdateStock(item.ProductID, item.Stock); err != nil {
			return err
		}
	}
	return nil
}
