package handler

import (
	"net/http"

	"shop_backend/internal/domain/admin/service"
	userService "shop_backend/internal/domain/user/service"
	"shop_backend/pkg/response"
	"shop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理端处理器
type AdminHandler struct {
	analytics service.AnalyticsService
	users     userService.UserService
}

// NewAdminHandler 创建处理器
func NewAdminHandler(analytics service.AnalyticsService, users userService.UserService) *AdminHandler {
	return &AdminHandler{analytics: analytics, users: users}
}

// Revenue 营收报表
// @Summary 营收报表（按日/周/月聚合）
// @Tags Admin
// @Router /admin/revenue [get]
func (h *AdminHandler) Revenue(c *gin.Context) {
	report, err := h.analytics.Revenue(c.Query("period"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, report)
}

// Dashboard 运营看板
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.analytics.Dashboard()
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, stats)
}

// GetUsers 用户列表
func (h *AdminHandler) GetUsers(c *gin.Context) {
	var query utils.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	query.GetPageOffset()
	users, total, err := h.users.GetUsers(query.Page, query.Limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(users, total, &query))
}

// CreateAdminInput 创建管理员输入
type CreateAdminInput struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// CreateAdmin 创建管理员账号
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var input CreateAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, err := h.users.CreateAdmin(input.Name, input.Email, input.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}

// DeleteUser 删除用户
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, true)
}
