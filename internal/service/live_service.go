package service

import (
	"context"
	"strings"
	"time"

	"cme-platform/internal/model"
	"cme-platform/internal/repository"
	dbPkg "cme-platform/pkg/db"
	"cme-platform/pkg/errs"

	"gorm.io/gorm"
)

const liveListLimit = 5

// CreateLiveInput 创建直播
type CreateLiveInput struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description"`
	Cover       string     `json:"cover"`
	LiveURL     string     `json:"liveUrl"`
	StartTime   time.Time  `json:"startTime" binding:"required"`
	EndTime     *time.Time `json:"endTime"`
}

// UpdateLiveInput 更新直播
type UpdateLiveInput struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	Cover       *string    `json:"cover"`
	LiveURL     *string    `json:"liveUrl"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Status      *string    `json:"status" binding:"omitempty,oneof=UPCOMING LIVE ENDED"`
}

// LiveQuery 直播查询条件
type LiveQuery struct {
	Status  string `form:"status" binding:"omitempty,oneof=UPCOMING LIVE ENDED"`
	Keyword string `form:"keyword"`
}

// LiveWatchInput 直播观看上报
type LiveWatchInput struct {
	WatchTime int `json:"watchTime" binding:"min=0"`
}

// LiveDetail 直播详情，附带当前用户的观看情况
type LiveDetail struct {
	*model.Live
	IsWatched bool `json:"isWatched"`
	WatchTime int  `json:"watchTime"`
}

// LiveWatchResult 观看上报结果
type LiveWatchResult struct {
	Record *model.LiveWatchRecord `json:"record"`
	Reward *WatchReward           `json:"reward"`
}

type LiveService struct {
	db     *gorm.DB
	lives  *repository.LiveRepository
	points *PointsService
	now    func() time.Time
}

func NewLiveService(db *gorm.DB, lives *repository.LiveRepository, points *PointsService) *LiveService {
	return &LiveService{db: db, lives: lives, points: points, now: time.Now}
}

// Create 创建直播，初始状态为预告
func (s *LiveService) Create(ctx context.Context, in CreateLiveInput) (*model.Live, error) {
	if in.EndTime != nil && in.EndTime.Before(in.StartTime) {
		return nil, errs.Validation("结束时间不能早于开始时间", nil)
	}
	live := &model.Live{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Cover:       in.Cover,
		LiveURL:     in.LiveURL,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Status:      model.LiveStatusUpcoming,
	}
	if err := s.lives.Create(ctx, live); err != nil {
		return nil, err
	}
	return live, nil
}

func (s *LiveService) get(ctx context.Context, id string) (*model.Live, error) {
	live, err := s.lives.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "直播不存在")
	}
	return live, nil
}

func (s *LiveService) Update(ctx context.Context, id string, in UpdateLiveInput) (*model.Live, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	setIf(fields, "title", in.Title)
	setIf(fields, "description", in.Description)
	setIf(fields, "cover", in.Cover)
	setIf(fields, "live_url", in.LiveURL)
	setIf(fields, "start_time", in.StartTime)
	setIf(fields, "end_time", in.EndTime)
	setIf(fields, "status", in.Status)
	if len(fields) > 0 {
		if err := s.lives.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.get(ctx, id)
}

// Get 直播详情
func (s *LiveService) Get(ctx context.Context, id, viewerID string) (*LiveDetail, error) {
	live, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &LiveDetail{Live: live}
	if viewerID == "" {
		return detail, nil
	}
	rec, err := s.lives.GetWatchRecord(ctx, id, viewerID)
	switch {
	case err == nil:
		detail.IsWatched = true
		detail.WatchTime = rec.WatchTime
	case !dbPkg.IsNotFound(err):
		return nil, err
	}
	return detail, nil
}

func (s *LiveService) Query(ctx context.Context, q LiveQuery, page, pageSize int) (*PageResult[model.Live], error) {
	filter := repository.LiveFilter{
		Status:  optional(q.Status),
		Keyword: optional(strings.TrimSpace(q.Keyword)),
	}
	lives, total, err := s.lives.Query(ctx, filter, pageOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(lives, total, page, pageSize), nil
}

// RecordWatch 上报观看时长
// 观看时长累加，观看人数+1，单次满1分钟奖励积分
func (s *LiveService) RecordWatch(ctx context.Context, liveID, userID string, in LiveWatchInput) (*LiveWatchResult, error) {
	if _, err := s.get(ctx, liveID); err != nil {
		return nil, err
	}

	var rec *model.LiveWatchRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lives := s.lives.WithTx(tx)
		var err error
		if rec, err = lives.AccumulateWatch(ctx, liveID, userID, in.WatchTime); err != nil {
			return err
		}
		return lives.IncrementViewCount(ctx, liveID)
	})
	if err != nil {
		return nil, err
	}

	reward, err := s.points.AddWatchLivePoints(ctx, userID, liveID, in.WatchTime)
	if err != nil {
		return nil, err
	}
	return &LiveWatchResult{Record: rec, Reward: reward}, nil
}

// Streaming 正在进行的直播
func (s *LiveService) Streaming(ctx context.Context) ([]model.Live, error) {
	return s.lives.Streaming(ctx, s.now(), liveListLimit)
}

// Upcoming 直播预告
func (s *LiveService) Upcoming(ctx context.Context) ([]model.Live, error) {
	return s.lives.Upcoming(ctx, s.now(), liveListLimit)
}
