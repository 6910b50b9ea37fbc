package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误类别
type Kind int

const (
	// KindValidation 参数非法
	KindValidation Kind = iota + 1
	// KindNotFound 资源不存在
	KindNotFound
	// KindForbidden 越权访问
	KindForbidden
	// KindConflict 状态冲突（库存不足、重复支付等）
	KindConflict
	// KindInvalidSignature 支付签名校验失败
	KindInvalidSignature
	// KindUpstream 上游网关不可用或未配置
	KindUpstream
	// KindPersistence 外部副作用已发生但本地写入失败，必须单独暴露，不允许降级为普通失败
	KindPersistence
)

// Error 业务错误，携带类别与面向调用方的消息
type Error struct {
	Kind    Kind
	Message string
	Code    int   // 业务码，0 表示按类别取默认值
	Err     error // 底层原因，仅用于日志
}

// WithCode 指定业务码
func (e *Error) WithCode(code int) *Error {
	e.Code = code
	return e
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus 类别对应的 HTTP 状态码
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInvalidSignature:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// As 提取业务错误，失败返回 nil
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Is 判断错误类别
func Is(err error, kind Kind) bool {
	if e := As(err); e != nil {
		return e.Kind == kind
	}
	return false
}
