// Package validate 请求参数绑定与校验
// 基于 gin binding（validator/v10），校验失败统一转换为 errs.Validation
package validate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"cme-platform/config"
	"cme-platform/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// PhonePattern 中国大陆手机号
var PhonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

var registerOnce sync.Once

// Register 向 gin 的校验引擎注册自定义规则
func Register() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("cnphone", func(fl validator.FieldLevel) bool {
				return PhonePattern.MatchString(fl.Field().String())
			})
		}
	})
}

// FieldError 单个字段的校验错误
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// BindJSON 绑定并校验请求体
func BindJSON(c *gin.Context, req interface{}) error {
	Register()
	if err := c.ShouldBindJSON(req); err != nil {
		return translate("参数验证失败", err)
	}
	return nil
}

// BindQuery 绑定并校验查询参数
func BindQuery(c *gin.Context, req interface{}) error {
	Register()
	if err := c.ShouldBindQuery(req); err != nil {
		return translate("查询参数验证失败", err)
	}
	return nil
}

func translate(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{
				Field: lowerFirst(fe.Field()),
				Rule:  fe.Tag(),
				Param: fe.Param(),
			})
		}
		return errs.Validation(message, details)
	}
	// JSON格式错误或类型不匹配
	return errs.Validation(message, []FieldError{{Field: "body", Rule: "format", Param: err.Error()}})
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// PageQuery 分页参数
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

// Normalize 填充默认值并校验范围
func (q *PageQuery) Normalize(cfg config.PaginationConfig) error {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = cfg.DefaultPageSize
	}
	var details []FieldError
	if q.Page < 1 {
		details = append(details, FieldError{Field: "page", Rule: "min", Param: "1"})
	}
	if q.PageSize < 1 {
		details = append(details, FieldError{Field: "pageSize", Rule: "min", Param: "1"})
	}
	if cfg.MaxPageSize > 0 && q.PageSize > cfg.MaxPageSize {
		details = append(details, FieldError{Field: "pageSize", Rule: "max", Param: strconv.Itoa(cfg.MaxPageSize)})
	}
	if len(details) > 0 {
		return errs.Validation("查询参数验证失败", details)
	}
	return nil
}

// Offset 计算偏移量
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}
