package model

import "time"

// 直播状态
const (
	LiveStatusUpcoming = "UPCOMING"
	LiveStatusLive     = "LIVE"
	LiveStatusEnded    = "ENDED"
)

// Live 直播
type Live struct {
	Base
	Title       string     `gorm:"type:varchar(200);not null;comment:标题" json:"title"`
	Description string     `gorm:"type:text;comment:描述" json:"description"`
	Cover       string     `gorm:"type:varchar(255);comment:封面" json:"cover"`
	LiveURL     string     `gorm:"type:varchar(255);comment:直播地址" json:"liveUrl"`
	StartTime   time.Time  `gorm:"not null;index;comment:开始时间" json:"startTime"`
	EndTime     *time.Time `gorm:"comment:结束时间" json:"endTime"`
	Status      string     `gorm:"type:varchar(16);not null;default:UPCOMING;index;comment:状态" json:"status"`
	ViewCount   int        `gorm:"not null;default:0;comment:观看次数" json:"viewCount"`
}

// LiveWatchRecord 直播观看记录，(live_id, user_id) 唯一，观看时长累加
type LiveWatchRecord struct {
	Base
	LiveID    string `gorm:"type:varchar(36);not null;uniqueIndex:idx_live_watch_pair;comment:直播ID" json:"liveId"`
	UserID    string `gorm:"type:varchar(36);not null;uniqueIndex:idx_live_watch_pair;comment:用户ID" json:"userId"`
	WatchTime int    `gorm:"not null;default:0;comment:观看时长(秒)" json:"watchTime"`
}
