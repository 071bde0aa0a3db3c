package model

import "time"

// 订单状态
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusRefunded  = "REFUNDED"
)

// Order 订单
// 金额以十进制字符串保存，避免浮点误差
type Order struct {
	Base
	OrderNo     string     `gorm:"type:varchar(32);not null;uniqueIndex;comment:订单号" json:"orderNo"`
	UserID      string     `gorm:"type:varchar(36);not null;index;comment:用户ID" json:"userId"`
	ProductType string     `gorm:"type:varchar(32);not null;index;comment:产品类型" json:"productType"`
	ProductID   string     `gorm:"type:varchar(36);not null;comment:产品ID" json:"productId"`
	ProductName string     `gorm:"type:varchar(200);not null;comment:产品名称" json:"productName"`
	Amount      string     `gorm:"type:varchar(20);not null;comment:金额" json:"amount"`
	Status      string     `gorm:"type:varchar(16);not null;default:PENDING;index;comment:状态" json:"status"`
	PaidAt      *time.Time `gorm:"comment:支付时间" json:"paidAt"`

	User *OrderUser `gorm:"foreignKey:UserID;-:migration" json:"user,omitempty"`
}

// TableName order 为保留字，使用 purchase_order
func (Order) TableName() string { return "purchase_order" }

// OrderUser 订单关联的用户摘要
type OrderUser struct {
	ID       string  `json:"id"`
	Nickname string  `json:"nickname"`
	Email    *string `json:"email"`
}

func (OrderUser) TableName() string { return "user_account" }
