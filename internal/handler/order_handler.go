package handler

import (
	"context"

	"cme-platform/config"
	"cme-platform/internal/authz"
	"cme-platform/internal/model"
	"cme-platform/internal/service"
	"cme-platform/pkg/jwt"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	pager
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService, cfg config.PaginationConfig) *OrderHandler {
	return &OrderHandler{pager: pager{cfg}, orders: orders}
}

// List 订单列表，非管理员只能查询自己的订单
func (h *OrderHandler) List(c *gin.Context) {
	var q service.OrderQuery
	page, ok := h.bindList(c, &q)
	if !ok {
		return
	}
	if subject := subjectOf(c); !subject.IsAdmin() {
		q.UserID = subject.UserID
	}
	res, err := h.orders.Query(c.Request.Context(), q, page.Page, page.PageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	paginated(c, res)
}

// Create 创建订单，未指定用户时为当前用户
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderInput
	if !bindJSON(c, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = jwt.GetUserID(c)
	}
	if !authorize(c, authz.OrderCreate, req.UserID) {
		return
	}
	order, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "订单创建成功", order)
}

// load 读取订单并校验归属
func (h *OrderHandler) load(c *gin.Context, action authz.Action) (*model.Order, bool) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return nil, false
	}
	if !authorize(c, action, order.UserID) {
		return nil, false
	}
	return order, true
}

// GetByOrderNo 按订单号查询
func (h *OrderHandler) GetByOrderNo(c *gin.Context) {
	order, err := h.orders.GetByOrderNo(c.Request.Context(), c.Param("orderNo"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	if !authorize(c, authz.OrderRead, order.UserID) {
		return
	}
	response.Success(c, order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, ok := h.load(c, authz.OrderRead)
	if !ok {
		return
	}
	response.Success(c, order)
}

// Pay 支付订单
func (h *OrderHandler) Pay(c *gin.Context) {
	h.transition(c, authz.OrderPay, "支付成功", h.orders.Pay)
}

// Cancel 取消订单
func (h *OrderHandler) Cancel(c *gin.Context) {
	h.transition(c, authz.OrderCancel, "订单已取消", h.orders.Cancel)
}

func (h *OrderHandler) transition(c *gin.Context, action authz.Action, message string,
	apply func(ctx context.Context, id string) (*model.Order, error)) {
	order, ok := h.load(c, action)
	if !ok {
		return
	}
	updated, err := apply(c.Request.Context(), order.ID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, message, updated)
}
