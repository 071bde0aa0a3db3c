package handler

import (
	"cme-platform/config"
	"cme-platform/internal/authz"
	"cme-platform/internal/service"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExpertHandler struct {
	pager
	experts *service.ExpertService
}

func NewExpertHandler(experts *service.ExpertService, cfg config.PaginationConfig) *ExpertHandler {
	return &ExpertHandler{pager: pager{cfg}, experts: experts}
}

func (h *ExpertHandler) List(c *gin.Context) {
	var q service.ExpertQuery
	page, ok := h.bindList(c, &q)
	if !ok {
		return
	}
	res, err := h.experts.Query(c.Request.Context(), q, page.Page, page.PageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	paginated(c, res)
}

func (h *ExpertHandler) Create(c *gin.Context) {
	if !authorize(c, authz.ExpertCreate, "") {
		return
	}
	var req service.CreateExpertInput
	if !bindJSON(c, &req) {
		return
	}
	expert, err := h.experts.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "专家创建成功", expert)
}

func (h *ExpertHandler) Get(c *gin.Context) {
	expert, err := h.experts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, expert)
}

func (h *ExpertHandler) Courses(c *gin.Context) {
	page, ok := h.bind(c)
	if !ok {
		return
	}
	res, err := h.experts.Courses(c.Request.Context(), c.Param("id"), page.Page, page.PageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	paginated(c, res)
}

func (h *ExpertHandler) Articles(c *gin.Context) {
	page, ok := h.bind(c)
	if !ok {
		return
	}
	res, err := h.experts.Articles(c.Request.Context(), c.Param("id"), page.Page, page.PageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	paginated(c, res)
}
