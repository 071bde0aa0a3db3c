package repository

import (
	"context"
	"time"

	"cme-platform/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LiveFilter 直播查询条件
type LiveFilter struct {
	Status  *string
	Keyword *string
}

func (f LiveFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.Keyword != nil && *f.Keyword != "" {
		db = containsAny(db, *f.Keyword, "title", "description")
	}
	return db
}

// LiveRepository 直播数据仓储
type LiveRepository struct {
	orm *gorm.DB
}

func NewLiveRepository(db *gorm.DB) *LiveRepository {
	return &LiveRepository{orm: db}
}

func (r *LiveRepository) WithTx(tx *gorm.DB) *LiveRepository {
	return &LiveRepository{orm: tx}
}

func (r *LiveRepository) Create(ctx context.Context, live *model.Live) error {
	return r.orm.WithContext(ctx).Create(live).Error
}

func (r *LiveRepository) GetByID(ctx context.Context, id string) (*model.Live, error) {
	var l model.Live
	if err := r.orm.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LiveRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.orm.WithContext(ctx).Model(&model.Live{}).Where("id = ?", id).Updates(fields).Error
}

func (r *LiveRepository) IncrementViewCount(ctx context.Context, id string) error {
	return r.orm.WithContext(ctx).Model(&model.Live{}).Where("id = ?", id).
		UpdateColumns(increment("view_count", 1)).Error
}

// Query 按开始时间倒序
func (r *LiveRepository) Query(ctx context.Context, filter LiveFilter, page Page) ([]model.Live, int64, error) {
	var lives []model.Live
	query := filter.apply(r.orm.WithContext(ctx).Model(&model.Live{}))
	total, err := findPage(query, page, &lives, func(db *gorm.DB) *gorm.DB {
		return db.Order("start_time DESC")
	})
	return lives, total, err
}

// Streaming 正在直播：状态为 LIVE 且 now 落在 [start_time, end_time] 内（无结束时间视为未结束）
func (r *LiveRepository) Streaming(ctx context.Context, now time.Time, limit int) ([]model.Live, error) {
	var lives []model.Live
	err := r.orm.WithContext(ctx).
		Where("status = ? AND start_time <= ?", model.LiveStatusLive, now).
		Where("(end_time IS NULL OR end_time >= ?)", now).
		Order("start_time DESC").
		Limit(limit).
		Find(&lives).Error
	return lives, err
}

// Upcoming 即将开始的直播，按开始时间正序
func (r *LiveRepository) Upcoming(ctx context.Context, now time.Time, limit int) ([]model.Live, error) {
	var lives []model.Live
	err := r.orm.WithContext(ctx).
		Where("status = ? AND start_time >= ?", model.LiveStatusUpcoming, now).
		Order("start_time ASC").
		Limit(limit).
		Find(&lives).Error
	return lives, err
}

func (r *LiveRepository) GetWatchRecord(ctx context.Context, liveID, userID string) (*model.LiveWatchRecord, error) {
	var rec model.LiveWatchRecord
	if err := r.orm.WithContext(ctx).Where("live_id = ? AND user_id = ?", liveID, userID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// AccumulateWatch 写入观看记录，已存在时累加观看时长
func (r *LiveRepository) AccumulateWatch(ctx context.Context, liveID, userID string, watchTime int) (*model.LiveWatchRecord, error) {
	rec := &model.LiveWatchRecord{LiveID: liveID, UserID: userID, WatchTime: watchTime}
	err := r.orm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "live_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"watch_time": gorm.Expr("live_watch_record.watch_time + ?", watchTime),
			"updated_at": time.Now(),
		}),
	}).Create(rec).Error
	if err != nil {
		return nil, err
	}
	return r.GetWatchRecord(ctx, liveID, userID)
}
