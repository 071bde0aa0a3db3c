package model

// 资源类型
const (
	ResourceTypeDocument = "DOCUMENT"
	ResourceTypeVideo    = "VIDEO"
	ResourceTypeImage    = "IMAGE"
	ResourceTypeAudio    = "AUDIO"
)

// 资源状态
const (
	ResourceStatusDraft     = "DRAFT"
	ResourceStatusPublished = "PUBLISHED"
	ResourceStatusArchived  = "ARCHIVED"
)

// Resource 学习资源
type Resource struct {
	Base
	Title       string `gorm:"type:varchar(200);not null;comment:标题" json:"title"`
	Description string `gorm:"type:text;comment:描述" json:"description"`
	Type        string `gorm:"type:varchar(16);not null;index;comment:类型" json:"type"`
	FileURL     string `gorm:"type:varchar(255);not null;comment:文件地址" json:"fileUrl"`
	Cover       string `gorm:"type:varchar(255);comment:封面" json:"cover"`
	Category    string `gorm:"type:varchar(64);index;comment:分类" json:"category"`
	Status      string `gorm:"type:varchar(16);not null;default:PUBLISHED;index;comment:状态" json:"status"`
	ViewCount   int    `gorm:"not null;default:0;comment:查看次数" json:"viewCount"`
}
