package handler

import (
	"net/http"

	"shop_backend/internal/domain/product/service"
	"shop_backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 品类管理处理器
type CategoryHandler struct {
	service service.CategoryService
}

// NewCategoryHandler 创建处理器
func NewCategoryHandler(service service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// CategoryInput 创建/更新品类输入
type CategoryInput struct {
	Name        string `json:"name" binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"max=500"`
}

// GetCategoryStats 品类列表及商品统计（管理员）
// @Summary 品类列表（含每类商品数、缺货数）
// @Tags Admin
// @Router /admin/categories [get]
func (h *CategoryHandler) GetCategoryStats(c *gin.Context) {
	stats, err := h.service.GetCategoryStats()
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, stats)
}

// CreateCategory 创建品类（管理员）
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	category, err := h.service.CreateCategory(service.CategoryInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新品类（管理员），改名会级联到商品
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	category, err := h.service.UpdateCategory(c.Param("id"), service.CategoryInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除品类（管理员），仍有商品时返回冲突
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.service.DeleteCategory(c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, true)
}
