package handler

import (
	"net/http"

	"shop_backend/internal/domain/user/service"
	"shop_backend/internal/pkg/config"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	tokenCookieName = "token"
	stateCookieName = "oauth_state"
	// cookie 有效期与 JWT 一致 (30天)
	tokenCookieMaxAge = 30 * 24 * 3600
)

// UserHandler 用户处理器
type UserHandler struct {
	service    service.UserService
	googleAuth service.GoogleAuthService // 未配置时为 nil
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService, googleAuth service.GoogleAuthService) *UserHandler {
	return &UserHandler{service: service, googleAuth: googleAuth}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// setTokenCookie 下发 httpOnly token cookie
func setTokenCookie(c *gin.Context, token string) {
	secure := !config.GlobalConfig.App.Debug
	c.SetSameSite(http.SameSiteLaxMode)
	if secure {
		c.SetSameSite(http.SameSiteNoneMode)
	}
	c.SetCookie(tokenCookieName, token, tokenCookieMaxAge,
		"/", config.GlobalConfig.JWT.CookieDomain, secure, true)
}

// Register 处理注册请求
// @Summary 用户注册
// @Tags Auth
// @Router /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, token, err := h.service.Register(input.Name, input.Email, input.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	setTokenCookie(c, token)
	response.Success(c, gin.H{
		"user":  user,
		"token": token,
	})
}

// Login 处理登录请求
// @Summary 用户登录
// @Tags Auth
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, token, err := h.service.Login(input.Email, input.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	setTokenCookie(c, token)
	response.Success(c, gin.H{
		"user":  user,
		"token": token,
	})
}

// Logout 退出登录，清除 cookie
func (h *UserHandler) Logout(c *gin.Context) {
	c.SetCookie(tokenCookieName, "", -1, "/", config.GlobalConfig.JWT.CookieDomain, false, true)
	response.Success(c, nil)
}

// Me 当前用户信息
func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.service.GetUser(userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}

// GoogleLogin 跳转到 Google 授权页
func (h *UserHandler) GoogleLogin(c *gin.Context) {
	if h.googleAuth == nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Google login not configured")
		return
	}

	// state 防 CSRF，写入短期 cookie 供回调校验
	state := uuid.New().String()
	c.SetCookie(stateCookieName, state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.googleAuth.AuthURL(state))
}

// GoogleCallback 授权码回调，登录成功后 302 回前端
func (h *UserHandler) GoogleCallback(c *gin.Context) {
	if h.googleAuth == nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Google login not configured")
		return
	}

	clientURL := config.GlobalConfig.App.ClientURL

	state, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || state != c.Query("state") {
		c.Redirect(http.StatusTemporaryRedirect, clientURL+"/login?error=oauth_state")
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusTemporaryRedirect, clientURL+"/login?error=oauth_denied")
		return
	}

	_, token, err := h.googleAuth.HandleCallback(c.Request.Context(), code)
	if err != nil {
		c.Redirect(http.StatusTemporaryRedirect, clientURL+"/login?error=oauth_failed")
		return
	}

	setTokenCookie(c, token)
	c.Redirect(http.StatusTemporaryRedirect, clientURL)
}

// WishlistInput 收藏输入
type WishlistInput struct {
	ProductID string `json:"productId" binding:"required,uuid"`
}

// AddToWishlist 添加收藏
func (h *UserHandler) AddToWishlist(c *gin.Context) {
	var input WishlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Product ID required")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.service.AddToWishlist(userID, input.ProductID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, nil)
}

// RemoveFromWishlist 取消收藏
func (h *UserHandler) RemoveFromWishlist(c *gin.Context) {
	var input WishlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Product ID required")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.service.RemoveFromWishlist(userID, input.ProductID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetWishlist 获取收藏列表
func (h *UserHandler) GetWishlist(c *gin.Context) {
	userID := middleware.GetUserID(c)
	products, err := h.service.GetWishlist(userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, products)
}
