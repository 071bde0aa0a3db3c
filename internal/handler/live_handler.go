package handler

import (
	"cme-platform/config"
	"cme-platform/internal/authz"
	"cme-platform/internal/service"
	"cme-platform/pkg/jwt"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

type LiveHandler struct {
	pager
	lives *service.LiveService
}

func NewLiveHandler(lives *service.LiveService, cfg config.PaginationConfig) *LiveHandler {
	return &LiveHandler{pager: pager{cfg}, lives: lives}
}

func (h *LiveHandler) List(c *gin.Context) {
	var q service.LiveQuery
	page, ok := h.bindList(c, &q)
	if !ok {
		return
	}
	res, err := h.lives.Query(c.Request.Context(), q, page.Page, page.PageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	paginated(c, res)
}

func (h *LiveHandler) Create(c *gin.Context) {
	if !authorize(c, authz.LiveCreate, "") {
		return
	}
	var req service.CreateLiveInput
	if !bindJSON(c, &req) {
		return
	}
	live, err := h.lives.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "直播创建成功", live)
}

// Get 直播详情，登录用户附带观看情况
func (h *LiveHandler) Get(c *gin.Context) {
	detail, err := h.lives.Get(c.Request.Context(), c.Param("id"), jwt.GetUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, detail)
}

func (h *LiveHandler) Update(c *gin.Context) {
	if !authorize(c, authz.LiveUpdate, "") {
		return
	}
	var req service.UpdateLiveInput
	if !bindJSON(c, &req) {
		return
	}
	live, err := h.lives.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "直播更新成功", live)
}

// Watch 上报观看时长
func (h *LiveHandler) Watch(c *gin.Context) {
	var req service.LiveWatchInput
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.lives.RecordWatch(c.Request.Context(), c.Param("id"), jwt.GetUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, result.Reward.Message, result)
}

func (h *LiveHandler) Streaming(c *gin.Context) {
	lives, err := h.lives.Streaming(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, lives)
}

func (h *LiveHandler) Upcoming(c *gin.Context) {
	lives, err := h.lives.Upcoming(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, lives)
}
