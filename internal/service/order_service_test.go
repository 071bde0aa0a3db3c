package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cme-platform/internal/model"
	"cme-platform/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderInput(userID string) CreateOrderInput {
	return CreateOrderInput{
		UserID:      userID,
		ProductType: "COURSE",
		ProductID:   "course-1",
		ProductName: "心电图入门",
		Amount:      "99.90",
	}
}

func TestAmountUnmarshal(t *testing.T) {
	var in CreateOrderInput
	require.NoError(t, json.Unmarshal([]byte(`{"amount": 99.9}`), &in))
	assert.Equal(t, Amount("99.9"), in.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"amount": "12.50"}`), &in))
	assert.Equal(t, Amount("12.50"), in.Amount)

	assert.Error(t, json.Unmarshal([]byte(`{"amount": -1}`), &in))
	assert.Error(t, json.Unmarshal([]byte(`{"amount": true}`), &in))
}

func TestCreateOrder(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	user := s.createUser(t, "buyer@example.com")

	order, err := s.orders.Create(ctx, newOrderInput(user.ID))
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "99.90", order.Amount)
	assert.Regexp(t, `^ORD\d{17}$`, order.OrderNo)
	require.NotNil(t, order.User)
	assert.Equal(t, user.ID, order.User.ID)

	byNo, err := s.orders.GetByOrderNo(ctx, order.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, order.ID, byNo.ID)

	for _, amount := range []Amount{"12.345", "0", "0.00", "00.0"} {
		bad := newOrderInput(user.ID)
		bad.Amount = amount
		_, err = s.orders.Create(ctx, bad)
		assert.True(t, errs.HasCode(err, errs.CodeValidation), "amount %q", amount)
	}

	_, err = s.orders.Create(ctx, newOrderInput("missing"))
	assert.True(t, errs.HasCode(err, errs.CodeNotFound))
}

func TestCreateOrderRetriesOnDuplicateOrderNo(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	user := s.createUser(t, "dup@example.com")

	calls := 0
	s.orders.generate = func() string {
		calls++
		return "ORD-FIXED"
	}
	var slept []time.Duration
	s.orders.sleep = func(d time.Duration) { slept = append(slept, d) }

	_, err := s.orders.Create(ctx, newOrderInput(user.ID))
	require.NoError(t, err)

	_, err = s.orders.Create(ctx, newOrderInput(user.ID))
	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.CodeBusiness))
	assert.Equal(t, 1+maxOrderNoAttempts, calls)
	assert.Len(t, slept, maxOrderNoAttempts-1)
	for _, d := range slept {
		assert.Less(t, d, maxOrderNoJitter)
	}
}

func TestPayAndCancelTransitions(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	user := s.createUser(t, "pay@example.com")

	paid, err := s.orders.Create(ctx, newOrderInput(user.ID))
	require.NoError(t, err)

	got, err := s.orders.Pay(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, got.Status)
	require.NotNil(t, got.PaidAt)

	// 重复支付直接返回
	again, err := s.orders.Pay(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, again.Status)

	_, err = s.orders.Cancel(ctx, paid.ID)
	assert.True(t, errs.HasCode(err, errs.CodeBusiness))

	cancelled, err := s.orders.Create(ctx, newOrderInput(user.ID))
	require.NoError(t, err)
	got, err = s.orders.Cancel(ctx, cancelled.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, got.Status)
	assert.Nil(t, got.PaidAt)

	_, err = s.orders.Cancel(ctx, cancelled.ID)
	assert.NoError(t, err)
	_, err = s.orders.Pay(ctx, cancelled.ID)
	assert.True(t, errs.HasCode(err, errs.CodeBusiness))

	_, err = s.orders.Pay(ctx, "missing")
	assert.True(t, errs.HasCode(err, errs.CodeNotFound))
}

func TestQueryOrdersByUserAndStatus(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	a := s.createUser(t, "qa@example.com")
	b := s.createUser(t, "qb@example.com")

	o1, err := s.orders.Create(ctx, newOrderInput(a.ID))
	require.NoError(t, err)
	_, err = s.orders.Create(ctx, newOrderInput(a.ID))
	require.NoError(t, err)
	_, err = s.orders.Create(ctx, newOrderInput(b.ID))
	require.NoError(t, err)
	_, err = s.orders.Pay(ctx, o1.ID)
	require.NoError(t, err)

	res, err := s.orders.Query(ctx, OrderQuery{UserID: a.ID}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)

	res, err = s.orders.Query(ctx, OrderQuery{UserID: a.ID, Status: model.OrderStatusPaid}, 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, o1.ID, res.Items[0].ID)
}
