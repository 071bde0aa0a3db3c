package model

import (
	"time"

	"gorm.io/datatypes"
)

// 帖子状态
const (
	PostStatusDraft     = "DRAFT"
	PostStatusPublished = "PUBLISHED"
	PostStatusArchived  = "ARCHIVED"
	PostStatusDeleted   = "DELETED"
)

// Post 帖子
// Tags 以JSON数组存储，读写都经过 datatypes.JSONSlice 编解码，空标签存为 []
// PublishedAt 仅在首次发布时写入，之后不再清空
type Post struct {
	Base
	AuthorID    string                      `gorm:"type:varchar(36);not null;index;comment:作者ID" json:"authorId"`
	Title       string                      `gorm:"type:varchar(200);not null;comment:标题" json:"title"`
	Content     string                      `gorm:"type:text;not null;comment:内容" json:"content"`
	Category    string                      `gorm:"type:varchar(64);index;comment:分类" json:"category"`
	Tags        datatypes.JSONSlice[string] `gorm:"comment:标签" json:"tags"`
	Status      string                      `gorm:"type:varchar(16);not null;default:DRAFT;index;comment:状态" json:"status"`
	PublishedAt *time.Time                  `gorm:"comment:发布时间" json:"publishedAt"`
	ViewCount   int                         `gorm:"not null;default:0;comment:浏览量" json:"viewCount"`

	Author *UserBrief `gorm:"foreignKey:AuthorID;-:migration" json:"author,omitempty"`
}
