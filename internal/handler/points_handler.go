package handler

import (
	"cme-platform/config"
	"cme-platform/internal/service"
	"cme-platform/pkg/jwt"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

type PointsHandler struct {
	pager
	points *service.PointsService
}

func NewPointsHandler(points *service.PointsService, cfg config.PaginationConfig) *PointsHandler {
	return &PointsHandler{pager: pager{cfg}, points: points}
}

// My 当前用户积分账户
func (h *PointsHandler) My(c *gin.Context) {
	account, err := h.points.GetUserPoints(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, account)
}

// Logs 积分流水
func (h *PointsHandler) Logs(c *gin.Context) {
	var q struct {
		Type string `form:"type" binding:"omitempty,oneof=CHECK_IN WATCH_VIDEO WATCH_LIVE EXCHANGE"`
	}
	page, ok := h.bindList(c, &q)
	if !ok {
		return
	}
	var pointsType *string
	if q.Type != "" {
		pointsType = &q.Type
	}
	res, err := h.points.QueryLogs(c.Request.Context(), jwt.GetUserID(c), pointsType, page.Page, page.PageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	paginated(c, res)
}

// Exchange 积分兑换
func (h *PointsHandler) Exchange(c *gin.Context) {
	var req service.ExchangeInput
	if !bindJSON(c, &req) {
		return
	}
	log, err := h.points.Exchange(c.Request.Context(), jwt.GetUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "兑换成功", log)
}
