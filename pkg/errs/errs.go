// Package errs 定义业务错误类型
// 每个错误携带HTTP状态码与机器可读的错误码，由 response.Fail 原样输出
package errs

import (
	"errors"
	"net/http"
)

// 错误码
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeBusiness     = "BUSINESS_ERROR"
	CodeServer       = "SERVER_ERROR"

	CodeTooManyRequests = "TOO_MANY_REQUESTS"
)

// AppError 应用错误
type AppError struct {
	Code    string      // 错误码
	Message string      // 错误信息
	Status  int         // HTTP状态码
	Details interface{} // 错误详情（可选）
}

func (e *AppError) Error() string {
	return e.Code + ": " + e.Message
}

func newError(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// Validation 参数验证失败 400
func Validation(message string, details interface{}) *AppError {
	if message == "" {
		message = "参数验证失败"
	}
	return &AppError{Code: CodeValidation, Message: message, Status: http.StatusBadRequest, Details: details}
}

// BadRequest 请求错误 400
func BadRequest(message string) *AppError {
	return newError(CodeBadRequest, message, http.StatusBadRequest)
}

// Unauthorized 未授权 401
func Unauthorized(message string) *AppError {
	if message == "" {
		message = "未授权访问"
	}
	return newError(CodeUnauthorized, message, http.StatusUnauthorized)
}

// Forbidden 禁止访问 403
func Forbidden(message string) *AppError {
	if message == "" {
		message = "禁止访问"
	}
	return newError(CodeForbidden, message, http.StatusForbidden)
}

// NotFound 资源不存在 404
func NotFound(message string) *AppError {
	if message == "" {
		message = "资源不存在"
	}
	return newError(CodeNotFound, message, http.StatusNotFound)
}

// Conflict 资源冲突 409
func Conflict(message string) *AppError {
	if message == "" {
		message = "资源冲突"
	}
	return newError(CodeConflict, message, http.StatusConflict)
}

// Business 业务规则错误 400，可指定自定义错误码
func Business(message string, code ...string) *AppError {
	c := CodeBusiness
	if len(code) > 0 && code[0] != "" {
		c = code[0]
	}
	return newError(c, message, http.StatusBadRequest)
}

// As 从错误链中提取 AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode 判断错误链中是否存在指定错误码的 AppError
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
