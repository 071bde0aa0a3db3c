package handler

import (
	"cme-platform/config"
	"cme-platform/internal/authz"
	"cme-platform/internal/service"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

type ResourceHandler struct {
	pager
	resources *service.ResourceService
}

func NewResourceHandler(resources *service.ResourceService, cfg config.PaginationConfig) *ResourceHandler {
	return &ResourceHandler{pager: pager{cfg}, resources: resources}
}

func (h *ResourceHandler) List(c *gin.Context) {
	var q service.ResourceQuery
	page, ok := h.bindList(c, &q)
	if !ok {
		return
	}
	res, err := h.resources.Query(c.Request.Context(), q, page.Page, page.PageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	paginated(c, res)
}

func (h *ResourceHandler) Create(c *gin.Context) {
	if !authorize(c, authz.ResourceCreate, "") {
		return
	}
	var req service.CreateResourceInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.resources.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "资源创建成功", res)
}

func (h *ResourceHandler) Get(c *gin.Context) {
	res, err := h.resources.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, res)
}
