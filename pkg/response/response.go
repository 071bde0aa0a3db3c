package response

import (
	"net/http"

	"cme-platform/pkg/errs"
	"cme-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Success bool        `json:"success"`           // 是否成功
	Data    interface{} `json:"data,omitempty"`    // 响应数据
	Message string      `json:"message,omitempty"` // 提示信息
	Error   *ErrorBody  `json:"error,omitempty"`   // 错误信息
	Meta    *Meta       `json:"meta,omitempty"`    // 分页信息
}

// ErrorBody 错误信息
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Meta 分页信息
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewMeta 根据总数计算分页信息
func NewMeta(page, pageSize int, total int64) *Meta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &Meta{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Message: message})
}

// Paginated 分页响应
func Paginated(c *gin.Context, data interface{}, page, pageSize int, total int64) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Meta: NewMeta(page, pageSize, total)})
}

// Fail 错误响应
// AppError 按其状态码和错误码原样输出，其他错误记录日志后统一返回500
func Fail(c *gin.Context, err error) {
	if appErr, ok := errs.As(err); ok {
		c.AbortWithStatusJSON(appErr.Status, Response{
			Success: false,
			Error: &ErrorBody{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			},
		})
		return
	}

	logger.Error("未处理的错误",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
		Success: false,
		Error: &ErrorBody{
			Code:    errs.CodeServer,
			Message: "服务器内部错误",
		},
	})
}
