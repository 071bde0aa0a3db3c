package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"time"

	"cme-platform/internal/model"
	"cme-platform/internal/repository"
	dbPkg "cme-platform/pkg/db"
	"cme-platform/pkg/errs"
	"cme-platform/pkg/logger"
	"cme-platform/pkg/metrics"
	"cme-platform/pkg/validate"

	"go.uber.org/zap"
)

// 订单号冲突重试策略
const (
	maxOrderNoAttempts = 5
	maxOrderNoJitter   = 100 * time.Millisecond
)

var amountPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// Amount 金额，JSON 中可以是字符串或正数
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("amount must be a string or number: %w", err)
	}
	if f <= 0 {
		return errors.New("amount must be positive")
	}
	*a = Amount(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// CreateOrderInput 创建订单
type CreateOrderInput struct {
	UserID      string `json:"userId"`
	ProductType string `json:"productType" binding:"required"`
	ProductID   string `json:"productId" binding:"required"`
	ProductName string `json:"productName" binding:"required"`
	Amount      Amount `json:"amount" binding:"required"`
}

// OrderQuery 订单查询条件
type OrderQuery struct {
	UserID      string `form:"userId"`
	Status      string `form:"status" binding:"omitempty,oneof=PENDING PAID CANCELLED REFUNDED"`
	ProductType string `form:"productType"`
}

// OrderNoGenerator 生成订单号
type OrderNoGenerator func() string

// NewOrderNoGenerator 前缀 + 毫秒时间戳 + 4位随机数
func NewOrderNoGenerator(prefix string) OrderNoGenerator {
	return func() string {
		return fmt.Sprintf("%s%d%04d", prefix, time.Now().UnixMilli(), rand.Intn(10000))
	}
}

type OrderService struct {
	orders   *repository.OrderRepository
	users    *repository.UserRepository
	generate OrderNoGenerator
	sleep    func(time.Duration)
	now      func() time.Time
}

func NewOrderService(orders *repository.OrderRepository, users *repository.UserRepository, generate OrderNoGenerator) *OrderService {
	return &OrderService{
		orders:   orders,
		users:    users,
		generate: generate,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// Create 创建订单
// 订单号冲突时随机等待0~100ms后重试，最多尝试5次
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	amount := string(in.Amount)
	if !amountPattern.MatchString(amount) {
		return nil, errs.Validation("参数验证失败", []validate.FieldError{{Field: "amount", Rule: "format"}})
	}
	if v, _ := strconv.ParseFloat(amount, 64); v <= 0 {
		return nil, errs.Validation("参数验证失败", []validate.FieldError{{Field: "amount", Rule: "gt", Param: "0"}})
	}
	exists, err := s.users.Exists(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NotFound("用户不存在")
	}

	for attempt := 1; attempt <= maxOrderNoAttempts; attempt++ {
		order := &model.Order{
			OrderNo:     s.generate(),
			UserID:      in.UserID,
			ProductType: in.ProductType,
			ProductID:   in.ProductID,
			ProductName: in.ProductName,
			Amount:      amount,
			Status:      model.OrderStatusPending,
		}
		err := s.orders.Create(ctx, order)
		if err == nil {
			metrics.RecordOrderCreated(order.ProductType)
			return s.Get(ctx, order.ID)
		}
		if !dbPkg.IsDuplicateKey(err) {
			return nil, err
		}

		metrics.RecordOrderNoRetry()
		logger.Warn("订单号冲突", zap.String("order_no", order.OrderNo), zap.Int("attempt", attempt))
		if attempt < maxOrderNoAttempts {
			s.sleep(time.Duration(rand.Int63n(int64(maxOrderNoJitter))))
		}
	}
	return nil, errs.Business("订单号生成失败，请重试")
}

func (s *OrderService) Get(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "订单不存在")
	}
	return order, nil
}

func (s *OrderService) GetByOrderNo(ctx context.Context, orderNo string) (*model.Order, error) {
	order, err := s.orders.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, notFoundOr(err, "订单不存在")
	}
	return order, nil
}

func (s *OrderService) Query(ctx context.Context, q OrderQuery, page, pageSize int) (*PageResult[model.Order], error) {
	filter := repository.OrderFilter{
		UserID:      optional(q.UserID),
		Status:      optional(q.Status),
		ProductType: optional(q.ProductType),
	}
	orders, total, err := s.orders.Query(ctx, filter, pageOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(orders, total, page, pageSize), nil
}

// Pay 支付订单，已支付时直接返回
func (s *OrderService) Pay(ctx context.Context, id string) (*model.Order, error) {
	now := s.now()
	return s.transition(ctx, id, model.OrderStatusPaid, "订单状态不允许支付", map[string]interface{}{
		"status":  model.OrderStatusPaid,
		"paid_at": &now,
	})
}

// Cancel 取消订单，已取消时直接返回
func (s *OrderService) Cancel(ctx context.Context, id string) (*model.Order, error) {
	return s.transition(ctx, id, model.OrderStatusCancelled, "订单状态不允许取消", map[string]interface{}{
		"status": model.OrderStatusCancelled,
	})
}

// transition 仅允许 PENDING → target；已处于 target 视为成功
func (s *OrderService) transition(ctx context.Context, id, target, rejectMsg string, fields map[string]interface{}) (*model.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == target {
		return order, nil
	}
	if order.Status != model.OrderStatusPending {
		return nil, errs.Business(rejectMsg)
	}

	ok, err := s.orders.Transition(ctx, id, model.OrderStatusPending, fields)
	if err != nil {
		return nil, err
	}
	if updated, err := s.Get(ctx, id); err != nil {
		return nil, err
	} else if ok || updated.Status == target {
		if ok {
			metrics.RecordOrderTransition(target)
		}
		return updated, nil
	}
	return nil, errs.Business(rejectMsg)
}
