package handler

import (
	"cme-platform/config"
	"cme-platform/internal/authz"
	"cme-platform/internal/service"
	"cme-platform/pkg/jwt"
	"cme-platform/pkg/response"
	"cme-platform/pkg/validate"

	"github.com/gin-gonic/gin"
)

// subjectOf 当前请求的操作主体，游客返回空主体
func subjectOf(c *gin.Context) authz.Subject {
	if u := jwt.GetCurrentUser(c); u != nil {
		return authz.Subject{UserID: u.ID, Role: u.Role}
	}
	if p := jwt.GetPayload(c); p != nil {
		return authz.Subject{UserID: p.UserID, Role: p.Role}
	}
	return authz.Subject{}
}

// authorize 权限不足时写出错误响应并返回 false
func authorize(c *gin.Context, action authz.Action, ownerID string) bool {
	if err := authz.Authorize(subjectOf(c), action, ownerID); err != nil {
		response.Fail(c, err)
		return false
	}
	return true
}

// pager 分页参数解析
type pager struct {
	cfg config.PaginationConfig
}

func (p pager) bind(c *gin.Context) (validate.PageQuery, bool) {
	var q validate.PageQuery
	if err := validate.BindQuery(c, &q); err != nil {
		response.Fail(c, err)
		return q, false
	}
	if err := q.Normalize(p.cfg); err != nil {
		response.Fail(c, err)
		return q, false
	}
	return q, true
}

// bindList 同时解析过滤条件与分页参数
func (p pager) bindList(c *gin.Context, filter interface{}) (validate.PageQuery, bool) {
	if filter != nil {
		if err := validate.BindQuery(c, filter); err != nil {
			response.Fail(c, err)
			return validate.PageQuery{}, false
		}
	}
	return p.bind(c)
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := validate.BindJSON(c, req); err != nil {
		response.Fail(c, err)
		return false
	}
	return true
}

func paginated[T any](c *gin.Context, res *service.PageResult[T]) {
	response.Paginated(c, res.Items, res.Page, res.PageSize, res.Total)
}
