package response

import (
	"net/http"

	"shop_backend/pkg/apperr"
	"shop_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// HandleError 将业务错误翻译为统一响应
// 非业务错误记录日志后返回通用 500，不向外泄露内部细节
func HandleError(c *gin.Context, err error) {
	e := apperr.As(err)
	if e == nil {
		if logger.Log != nil {
			logger.Log.Error("unexpected error",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}
		Error(c, http.StatusInternalServerError, ErrServerInternal, "Internal server error")
		return
	}

	code := e.Code
	if code == 0 {
		code = codeFor(e.Kind)
	}
	Error(c, e.HTTPStatus(), code, e.Message)
}

func codeFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return ErrInvalidParam
	case apperr.KindNotFound:
		return CodeError
	case apperr.KindForbidden:
		return ErrNoPermission
	case apperr.KindConflict:
		return CodeError
	case apperr.KindInvalidSignature:
		return ErrInvalidSignature
	case apperr.KindUpstream:
		return ErrGatewayError
	case apperr.KindPersistence:
		return ErrPaidNotPersisted
	default:
		return ErrServerInternal
	}
}
