package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base 公共字段
// 主键为字符串UUID，创建前自动生成
type Base struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"comment:创建时间" json:"createdAt"`
	UpdatedAt time.Time `gorm:"comment:更新时间" json:"updatedAt"`
}

// BeforeCreate 生成主键
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// UserBrief 用户摘要，仅用于关联预加载
type UserBrief struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

func (UserBrief) TableName() string { return "user_account" }

// AllModels 需要自动迁移的模型
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Doctor{},
		&Expert{},
		&Category{},
		&Course{},
		&CourseVideo{},
		&CourseComment{},
		&CourseLike{},
		&CourseFavorite{},
		&VideoWatchHistory{},
		&Live{},
		&LiveWatchRecord{},
		&Post{},
		&Order{},
		&UserPoints{},
		&PointsLog{},
		&CheckIn{},
		&Resource{},
	}
}
