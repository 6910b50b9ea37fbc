package handler

import (
	"net/http"

	"shop_backend/internal/domain/product/repository"
	"shop_backend/internal/domain/product/service"
	"shop_backend/pkg/response"
	"shop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProductHandler 商品处理器
type ProductHandler struct {
	service service.ProductService
}

// NewProductHandler 创建处理器
func NewProductHandler(service service.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// ListQuery 商品列表查询参数
type ListQuery struct {
	utils.Pagination
	Category string   `form:"category"`
	Search   string   `form:"search"`
	MinPrice *float64 `form:"minPrice"`
	MaxPrice *float64 `form:"maxPrice"`
	Sort     string   `form:"sort"`
}

// ProductInput 创建/更新商品输入
type ProductInput struct {
	Name        string   `json:"name" binding:"required,min=2,max=100"`
	Description string   `json:"description" binding:"required,max=1000"`
	Price       float64  `json:"price" binding:"min=0"`
	Category    string   `json:"category" binding:"required"`
	Sizes       []string `json:"sizes" binding:"required,min=1"`
	ImageURL    string   `json:"imageURL" binding:"required,url"`
	Stock       int      `json:"stock" binding:"min=0"`
}

// GetProducts 商品列表
// @Summary 商品列表（过滤+分页）
// @Tags Product
// @Router /products [get]
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	filter := repository.ListFilter{
		Category: query.Category,
		Search:   query.Search,
		MinPrice: query.MinPrice,
		MaxPrice: query.MaxPrice,
		Sort:     query.Sort,
	}

	// 归一化页码边界
	query.GetPageOffset()
	products, total, err := h.service.GetProducts(filter, query.Page, query.Limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, utils.NewPageResult(products, total, &query.Pagination))
}

// GetProduct 商品详情
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.service.GetProduct(c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, product)
}

// GetCategories 品类列表
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.service.GetCategories()
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, categories)
}

// CreateProduct 创建商品（管理员）
// @Summary 创建商品
// @Tags Product
// @Router /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	product, err := h.service.CreateProduct(toServiceInput(input))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品（管理员）
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	product, err := h.service.UpdateProduct(c.Param("id"), toServiceInput(input))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品（管理员）
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.service.DeleteProduct(c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, true)
}

// BulkInventoryInput 批量库存调整输入
type BulkInventoryInput struct {
	Items []service.StockItem `json:"items" binding:"required,min=1,dive"`
}

// BulkUpdateInventory 批量库存调整（管理员）
func (h *ProductHandler) BulkUpdateInventory(c *gin.Context) {
	var input BulkInventoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.BulkUpdateInventory(input.Items); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, true)
}

func toServiceInput(input ProductInput) service.ProductInput {
	return service.ProductInput{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Sizes:       input.Sizes,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
	}
}
