package service

import (
	"os"
	"testing"

	productModel "shop_backend/internal/domain/product/model"
	"shop_backend/internal/domain/user/model"
	"shop_backend/internal/pkg/config"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	config.GlobalConfig.JWT.Secret = "test_secret_at_least_32_characters_long"
	config.GlobalConfig.JWT.Expire = 720
	os.Exit(m.Run())
}

// MockUserRepository is a mock of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetList(offset, limit int) ([]model.User, int64, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) AddWishlistItem(userID, productID string) error {
	args := m.Called(userID, productID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveWishlistItem(userID, productID string) error {
	args := m.Called(userID, productID)
	return args.Error(0)
}

func (m *MockUserRepository) GetWishlist(userID string) ([]productModel.Product, error) {
	args := m.Called(userID)
	return args.Get(0).([]productModel.Product), args.Error(1)
}

func (m *MockUserRepository) WishlistContains(userID, productID string) (bool, error) {
	args := m.Called(userID, productID)
	return args.Bool(0), args.Error(1)
}

func TestRegister(t *testing.T) {
	t.Run("New user success", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)

		mockRepo.On("GetByEmail", "new@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Create", mock.AnythingOfType("*model.User")).
			Run(func(args mock.Arguments) {
				args.Get(0).(*model.User).ID = "user-1"
			}).Return(nil)

		user, token, err := service.Register("Asha", "new@example.com", "s3cretpass")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, model.RoleUser, user.Role)
		// 密码必须以哈希形式入库
		assert.NotEqual(t, "s3cretpass", user.Password)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Duplicate email rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)

		existing := &model.User{Email: "taken@example.com"}
		mockRepo.On("GetByEmail", "taken@example.com").Return(existing, nil)

		_, _, err := service.Register("Asha", "taken@example.com", "s3cretpass")

		assert.True(t, apperr.Is(err, apperr.KindConflict))
		mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	t.Run("Valid credentials", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)

		// 先注册拿到真实哈希
		mockRepo.On("GetByEmail", "a@example.com").Return(nil, gorm.ErrRecordNotFound).Once()
		mockRepo.On("Create", mock.AnythingOfType("*model.User")).
			Run(func(args mock.Arguments) {
				args.Get(0).(*model.User).ID = "user-1"
			}).Return(nil)
		registered, _, err := service.Register("Asha", "a@example.com", "s3cretpass")
		assert.NoError(t, err)

		mockRepo.On("GetByEmail", "a@example.com").Return(registered, nil)
		user, token, err := service.Login("a@example.com", "s3cretpass")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("Wrong password and unknown email return the same error", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)

		mockRepo.On("GetByEmail", "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)
		_, _, errUnknown := service.Login("ghost@example.com", "whatever")

		known := &model.User{Email: "a@example.com", Password: "$2a$10$invalidhashinvalidhashinvalidhashinvalid"}
		mockRepo.On("GetByEmail", "a@example.com").Return(known, nil)
		_, _, errWrongPass := service.Login("a@example.com", "wrong")

		assert.True(t, apperr.Is(errUnknown, apperr.KindForbidden))
		assert.True(t, apperr.Is(errWrongPass, apperr.KindForbidden))
		assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	})
}

func TestCreateAdmin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	mockRepo.On("GetByEmail", "admin@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.AnythingOfType("*model.User")).Return(nil)

	admin, err := service.CreateAdmin("Boss", "admin@example.com", "adminpass123")

	assert.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	mockRepo.AssertExpectations(t)
}

func TestWishlist(t *testing.T) {
	t.Run("Add new item", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)

		mockRepo.On("WishlistContains", "user-1", "prod-1").Return(false, nil)
		mockRepo.On("AddWishlistItem", "user-1", "prod-1").Return(nil)

		assert.NoError(t, service.AddToWishlist("user-1", "prod-1"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Duplicate add is a conflict", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)

		mockRepo.On("WishlistContains", "user-1", "prod-1").Return(true, nil)

		err := service.AddToWishlist("user-1", "prod-1")

		assert.True(t, apperr.Is(err, apperr.KindConflict))
		mockRepo.AssertNotCalled(t, "AddWishlistItem", mock.Anything, mock.Anything)
	})
}
