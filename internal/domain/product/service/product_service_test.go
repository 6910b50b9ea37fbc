package service

import (
	"os"
	"testing"

	"shop_backend/internal/domain/product/model"
	"shop_backend/internal/domain/product/repository"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/cache"
	"shop_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

// MockProductRepository is a mock of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(product *model.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(id string) (*model.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDTx(tx *gorm.DB, id string) (*model.Product, error) {
	args := m.Called(tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) GetList(filter repository.ListFilter, offset, limit int) ([]model.Product, int64, error) {
	args := m.Called(filter, offset, limit)
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Update(product *model.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(product *model.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) ReserveStock(tx *gorm.DB, productID string, qty int) (bool, error) {
	args := m.Called(tx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) UpdateStock(productID string, stock int) error {
	args := m.Called(productID, stock)
	return args.Error(0)
}

// MockCategoryRepository is a mock of CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(category *model.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(id string) (*model.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByName(name string) (*model.Category, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetAll() ([]model.Category, error) {
	args := m.Called()
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetAllWithCounts() ([]model.CategoryStat, error) {
	args := m.Called()
	return args.Get(0).([]model.CategoryStat), args.Error(1)
}

func (m *MockCategoryRepository) Update(category *model.Category, oldName string) error {
	args := m.Called(category, oldName)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(category *model.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepository) CountProducts(name string) (int64, error) {
	args := m.Called(name)
	return args.Get(0).(int64), args.Error(1)
}

// knownCategories 返回把 Tops 当作已有品类的 mock
func knownCategories() *MockCategoryRepository {
	mockCategories := new(MockCategoryRepository)
	tops := &model.Category{Name: "Tops"}
	mockCategories.On("GetByName", "Tops").Return(tops, nil)
	return mockCategories
}

func validInput() ProductInput {
	return ProductInput{
		Name:        "Linen Shirt",
		Description: "Breathable summer wear",
		Price:       100,
		Category:    "Tops",
		Sizes:       []string{"S", "M", "L"},
		ImageURL:    "https://cdn.example.com/shirt.jpg",
		Stock:       5,
	}
}

func TestCreateProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewProductService(mockRepo, knownCategories())

		mockRepo.On("Create", mock.AnythingOfType("*model.Product")).Return(nil)

		product, err := service.CreateProduct(validInput())

		assert.NoError(t, err)
		assert.Equal(t, "Linen Shirt", product.Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Unknown category rejected", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockCategories := new(MockCategoryRepository)
		service := NewProductService(mockRepo, mockCategories)

		mockCategories.On("GetByName", "Gadgets").Return(nil, gorm.ErrRecordNotFound)

		input := validInput()
		input.Category = "Gadgets"

		_, err := service.CreateProduct(input)

		assert.True(t, apperr.Is(err, apperr.KindValidation))
		mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	})
}

func TestGetProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, new(MockCategoryRepository))

	t.Run("Not found maps to business error", func(t *testing.T) {
		mockRepo.On("GetByID", "missing").Return(nil, gorm.ErrRecordNotFound)

		_, err := service.GetProduct("missing")

		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestBulkUpdateInventory(t *testing.T) {
	t.Run("All items validated before any write", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewProductService(mockRepo, new(MockCategoryRepository))

		p1 := &model.Product{}
		p1.ID = "prod-1"
		mockRepo.On("GetByID", "prod-1").Return(p1, nil)
		mockRepo.On("GetByID", "missing").Return(nil, gorm.ErrRecordNotFound)

		err := service.BulkUpdateInventory([]StockItem{
			{ProductID: "prod-1", Stock: 10},
			{ProductID: "missing", Stock: 3},
		})

		assert.True(t, apperr.Is(err, apperr.KindNotFound))
		mockRepo.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything)
	})
}

func TestCachedProductService(t *testing.T) {
	t.Run("Second read served from cache", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewCachedProductService(mockRepo, new(MockCategoryRepository), cache.NewMemoryCache())

		p := &model.Product{Name: "Linen Shirt"}
		p.ID = "prod-1"
		mockRepo.On("GetByID", "prod-1").Return(p, nil).Once()

		first, err := service.GetProduct("prod-1")
		assert.NoError(t, err)

		second, err := service.GetProduct("prod-1")
		assert.NoError(t, err)
		assert.Equal(t, first.Name, second.Name)
		mockRepo.AssertNumberOfCalls(t, "GetByID", 1)
	})

	t.Run("Update invalidates cached product", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewCachedProductService(mockRepo, knownCategories(), cache.NewMemoryCache())

		p := &model.Product{Name: "Linen Shirt", Category: "Tops", Sizes: []string{"M"}}
		p.ID = "prod-1"
		mockRepo.On("GetByID", "prod-1").Return(p, nil)
		mockRepo.On("Update", mock.AnythingOfType("*model.Product")).Return(nil)

		_, err := service.GetProduct("prod-1")
		assert.NoError(t, err)

		input := validInput()
		input.Name = "Cotton Shirt"
		_, err = service.UpdateProduct("prod-1", input)
		assert.NoError(t, err)

		// 失效后重新回源
		fresh, err := service.GetProduct("prod-1")
		assert.NoError(t, err)
		assert.Equal(t, "Cotton Shirt", fresh.Name)
		mockRepo.AssertNumberOfCalls(t, "GetByID", 3)
	})
}
