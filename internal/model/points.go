package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 积分类型
const (
	PointsTypeCheckIn    = "CHECK_IN"
	PointsTypeWatchVideo = "WATCH_VIDEO"
	PointsTypeWatchLive  = "WATCH_LIVE"
	PointsTypeExchange   = "EXCHANGE"
)

// CheckDateLayout 签到日期格式（本地日历日）
const CheckDateLayout = "2006-01-02"

// UserPoints 用户积分账户，每个用户一条，首次访问时创建
type UserPoints struct {
	Base
	UserID          string `gorm:"type:varchar(36);not null;uniqueIndex;comment:用户ID" json:"userId"`
	TotalPoints     int    `gorm:"not null;default:0;comment:累计积分" json:"totalPoints"`
	AvailablePoints int    `gorm:"not null;default:0;comment:可用积分" json:"availablePoints"`
	UsedPoints      int    `gorm:"not null;default:0;comment:已用积分" json:"usedPoints"`

	User *UserBrief `gorm:"foreignKey:UserID;-:migration" json:"user,omitempty"`
}

// PointsLog 积分流水，只追加不修改，Points 为带符号的变动值
type PointsLog struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(36);not null;index:idx_points_log_user_type;comment:用户ID" json:"userId"`
	Points      int       `gorm:"not null;comment:积分变动" json:"points"`
	Type        string    `gorm:"type:varchar(16);not null;index:idx_points_log_user_type;comment:类型" json:"type"`
	Description string    `gorm:"type:varchar(255);comment:描述" json:"description"`
	RelatedID   string    `gorm:"type:varchar(36);comment:关联ID" json:"relatedId,omitempty"`
	CreatedAt   time.Time `gorm:"index;comment:创建时间" json:"createdAt"`
}

// BeforeCreate 生成主键
func (l *PointsLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// CheckIn 签到记录，(user_id, check_date) 唯一
type CheckIn struct {
	Base
	UserID          string `gorm:"type:varchar(36);not null;uniqueIndex:idx_checkin_user_date;comment:用户ID" json:"userId"`
	CheckDate       string `gorm:"type:varchar(10);not null;uniqueIndex:idx_checkin_user_date;comment:签到日期" json:"checkDate"`
	ConsecutiveDays int    `gorm:"not null;default:1;comment:连续签到天数" json:"consecutiveDays"`
	Points          int    `gorm:"not null;comment:获得积分" json:"points"`
}
