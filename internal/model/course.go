package model

import "time"

// 课程状态
const (
	CourseStatusDraft     = "DRAFT"
	CourseStatusPublished = "PUBLISHED"
	CourseStatusArchived  = "ARCHIVED"
)

// 评论状态
const (
	CommentStatusPublished = "PUBLISHED"
	CommentStatusHidden    = "HIDDEN"
)

// Category 课程分类，两级：顶级分类按科室划分
type Category struct {
	Base
	Name      string  `gorm:"type:varchar(64);not null;comment:分类名称" json:"name"`
	ParentID  *string `gorm:"type:varchar(36);index;comment:父分类ID" json:"parentId"`
	SortOrder int     `gorm:"not null;default:0;comment:排序" json:"sortOrder"`

	Children []Category `gorm:"foreignKey:ParentID;-:migration" json:"children,omitempty"`
}

// CategoryBrief 分类摘要
type CategoryBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (CategoryBrief) TableName() string { return "category" }

// Course 课程
type Course struct {
	Base
	Title         string   `gorm:"type:varchar(200);not null;comment:标题" json:"title"`
	Description   string   `gorm:"type:text;comment:描述" json:"description"`
	Cover         string   `gorm:"type:varchar(255);comment:封面" json:"cover"`
	CategoryID    string   `gorm:"type:varchar(36);not null;index;comment:分类ID" json:"categoryId"`
	AuthorID      string   `gorm:"type:varchar(36);not null;index;comment:作者ID" json:"authorId"`
	Price         float64  `gorm:"type:decimal(10,2);not null;default:0;comment:价格" json:"price"`
	OriginalPrice *float64 `gorm:"type:decimal(10,2);comment:原价" json:"originalPrice"`
	IsFree        bool     `gorm:"not null;default:false;comment:是否免费" json:"isFree"`
	IsVip         bool     `gorm:"not null;default:false;comment:是否会员专享" json:"isVip"`
	Status        string   `gorm:"type:varchar(16);not null;default:DRAFT;index;comment:状态" json:"status"`
	ViewCount     int      `gorm:"not null;default:0;comment:观看次数" json:"viewCount"`
	LikeCount     int      `gorm:"not null;default:0;comment:点赞数" json:"likeCount"`
	FavoriteCount int      `gorm:"not null;default:0;comment:收藏数" json:"favoriteCount"`
	CommentCount  int      `gorm:"not null;default:0;comment:评论数" json:"commentCount"`

	Category *CategoryBrief `gorm:"foreignKey:CategoryID;-:migration" json:"category,omitempty"`
	Author   *UserBrief     `gorm:"foreignKey:AuthorID;-:migration" json:"author,omitempty"`
	Videos   []CourseVideo  `gorm:"foreignKey:CourseID;-:migration" json:"videos,omitempty"`
}

// CourseVideo 课程视频
type CourseVideo struct {
	Base
	CourseID    string `gorm:"type:varchar(36);not null;index;comment:课程ID" json:"courseId"`
	Title       string `gorm:"type:varchar(200);not null;comment:标题" json:"title"`
	Description string `gorm:"type:text;comment:描述" json:"description"`
	VideoURL    string `gorm:"type:varchar(255);not null;comment:视频地址" json:"videoUrl"`
	Duration    int    `gorm:"not null;default:0;comment:时长(秒)" json:"duration"`
	SortOrder   int    `gorm:"not null;default:0;comment:排序" json:"sortOrder"`
}

// CourseComment 课程评论，两级结构
type CourseComment struct {
	Base
	CourseID string  `gorm:"type:varchar(36);not null;index;comment:课程ID" json:"courseId"`
	UserID   string  `gorm:"type:varchar(36);not null;index;comment:用户ID" json:"userId"`
	Content  string  `gorm:"type:text;not null;comment:内容" json:"content"`
	ParentID *string `gorm:"type:varchar(36);index;comment:父评论ID" json:"parentId"`
	Status   string  `gorm:"type:varchar(16);not null;default:PUBLISHED;comment:状态" json:"status"`

	User    *UserBrief      `gorm:"foreignKey:UserID;-:migration" json:"user,omitempty"`
	Replies []CourseComment `gorm:"foreignKey:ParentID;-:migration" json:"replies,omitempty"`
}

// CourseLike 课程点赞，(course_id, user_id) 唯一
type CourseLike struct {
	Base
	CourseID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_course_like_pair;comment:课程ID" json:"courseId"`
	UserID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_course_like_pair;comment:用户ID" json:"userId"`
}

// CourseFavorite 课程收藏，(course_id, user_id) 唯一
type CourseFavorite struct {
	Base
	CourseID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_course_favorite_pair;comment:课程ID" json:"courseId"`
	UserID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_course_favorite_pair;comment:用户ID" json:"userId"`
}

// VideoWatchHistory 观看历史，每个用户每门课程一条
type VideoWatchHistory struct {
	Base
	CourseID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_watch_history_pair;comment:课程ID" json:"courseId"`
	UserID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_watch_history_pair;index;comment:用户ID" json:"userId"`
	VideoID     *string   `gorm:"type:varchar(36);comment:视频ID" json:"videoId"`
	WatchTime   int       `gorm:"not null;default:0;comment:观看时长(秒)" json:"watchTime"`
	Progress    float64   `gorm:"not null;default:0;comment:观看进度0-1" json:"progress"`
	LastWatchAt time.Time `gorm:"index;comment:最近观看时间" json:"lastWatchAt"`

	Course *Course `gorm:"foreignKey:CourseID;-:migration" json:"course,omitempty"`
}
