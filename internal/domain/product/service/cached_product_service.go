package service

import (
	"context"
	"fmt"
	"time"

	"shop_backend/internal/domain/product/model"
	"shop_backend/internal/domain/product/repository"
	"shop_backend/pkg/cache"
	"shop_backend/pkg/logger"

	"go.uber.org/zap"
)

// 缓存键常量
const (
	productCacheKeyPrefix     = "product:"
	productListCacheKeyPrefix = "product_list:"
	productCacheTTL           = time.Hour * 2
	productListCacheTTL       = time.Minute * 10
)

// CachedProductService 带缓存的商品服务，写操作透传并失效缓存
type CachedProductService struct {
	inner ProductService
	cache cache.CacheService
}

// NewCachedProductService 创建带缓存的商品服务
func NewCachedProductService(repo repository.ProductRepository, categories repository.CategoryRepository, c cache.CacheService) ProductService {
	return &CachedProductService{
		inner: NewProductService(repo, categories),
		cache: c,
	}
}

func productCacheKey(id string) string {
	return productCacheKeyPrefix + id
}

func productListCacheKey(filter repository.ListFilter, page, limit int) string {
	minPrice, maxPrice := "", ""
	if filter.MinPrice != nil {
		minPrice = fmt.Sprintf("%.2f", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		maxPrice = fmt.Sprintf("%.2f", *filter.MaxPrice)
	}
	return fmt.Sprintf("%s%s:%s:%s:%s:%s:%d:%d",
		productListCacheKeyPrefix,
		filter.Category, filter.Search, minPrice, maxPrice, filter.Sort, page, limit)
}

// InvalidateProductCache 清除指定商品的单品缓存和全部列表缓存。
// 商品域之外改动库存的写路径（如下单扣减）也需要调用。
func InvalidateProductCache(ctx context.Context, c cache.CacheService, productIDs ...string) {
	for _, id := range productIDs {
		if err := c.Delete(ctx, productCacheKey(id)); err != nil {
			logger.Log.Warn("product cache delete failed", zap.String("id", id), zap.Error(err))
		}
	}
	if err := c.InvalidatePattern(ctx, productListCacheKeyPrefix+"*"); err != nil {
		logger.Log.Warn("product list cache invalidation failed", zap.Error(err))
	}
}

// invalidate 商品写入后清除单品和列表缓存
func (s *CachedProductService) invalidate(ctx context.Context, productIDs ...string) {
	InvalidateProductCache(ctx, s.cache, productIDs...)
}

type cachedList struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
}

func (s *CachedProductService) GetProducts(filter repository.ListFilter, page, limit int) ([]model.Product, int64, error) {
	ctx := context.Background()
	key := productListCacheKey(filter, page, limit)

	var cached cachedList
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached.Products, cached.Total, nil
	}

	products, total, err := s.inner.GetProducts(filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	// 缓存失败不影响主流程
	_ = s.cache.Set(ctx, key, cachedList{Products: products, Total: total}, productListCacheTTL)
	return products, total, nil
}

func (s *CachedProductService) GetProduct(id string) (*model.Product, error) {
	ctx := context.Background()

	var cached model.Product
	if err := s.cache.Get(ctx, productCacheKey(id), &cached); err == nil {
		return &cached, nil
	}

	product, err := s.inner.GetProduct(id)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, productCacheKey(id), product, productCacheTTL)
	return product, nil
}

func (s *CachedProductService) GetCategories() ([]string, error) {
	return s.inner.GetCategories()
}

func (s *CachedProductService) CreateProduct(input ProductInput) (*model.Product, error) {
	product, err := s.inner.CreateProduct(input)
	if err != nil {
		return nil, err
	}
	s.invalidate(context.Background())
	return product, nil
}

func (s *CachedProductService) UpdateProduct(id string, input ProductInput) (*model.Product, error) {
	product, err := s.inner.UpdateProduct(id, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(context.Background(), id)
	return product, nil
}

func (s *CachedProductService) DeleteProduct(id string) error {
	if err := s.inner.DeleteProduct(id); err != nil {
		return err
	}
	s.invalidate(context.Background(), id)
	return nil
}

func (s *CachedProductService) BulkUpdateInventory(items []StockItem) error {
	if err := s.inner.BulkUpdateInventory(items); err != nil {
		return err
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	s.invalidate(context.Background(), ids...)
	return nil
}
