package service

import (
	"context"
	"fmt"
	"time"

	"cme-platform/internal/model"
	"cme-platform/internal/repository"
	dbPkg "cme-platform/pkg/db"
	"cme-platform/pkg/errs"
	"cme-platform/pkg/logger"
	"cme-platform/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 积分规则
const (
	checkInBasePoints   = 10
	checkInStreak3      = 15 // 连续3天及以上
	checkInStreak7      = 20 // 连续7天及以上
	watchVideoPoints    = 20
	watchVideoDailyCap  = 100
	watchVideoMinSecond = 300
	watchLivePoints     = 10
	watchLiveMinSecond  = 60
)

// ExchangeInput 积分兑换
type ExchangeInput struct {
	Points      int    `json:"points" binding:"required,gt=0"`
	Type        string `json:"type" binding:"required"`
	RelatedID   string `json:"relatedId" binding:"required"`
	Description string `json:"description"`
}

// WatchReward 观看奖励结果
type WatchReward struct {
	Points  int    `json:"points"`
	Message string `json:"message"`
}

// PointsService 积分账户、流水与签到
type PointsService struct {
	db   *gorm.DB
	repo *repository.PointsRepository
	now  func() time.Time
}

func NewPointsService(db *gorm.DB, repo *repository.PointsRepository) *PointsService {
	return &PointsService{db: db, repo: repo, now: time.Now}
}

// SetClock 替换时钟
func (s *PointsService) SetClock(now func() time.Time) {
	s.now = now
}

// CheckIn 每日签到
// 昨天签到过则连续天数+1，否则重置为1
func (s *PointsService) CheckIn(ctx context.Context, userID string) (*model.CheckIn, error) {
	now := s.now()
	today := now.Format(model.CheckDateLayout)
	y, m, d := now.Date()
	yesterday := time.Date(y, m, d-1, 0, 0, 0, 0, now.Location()).Format(model.CheckDateLayout)

	var checkIn *model.CheckIn
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.GetCheckIn(ctx, userID, today); err == nil {
			return errs.Business("今日已签到，请明天再来")
		} else if !dbPkg.IsNotFound(err) {
			return err
		}

		consecutive := 1
		last, err := repo.LatestCheckIn(ctx, userID)
		switch {
		case err == nil:
			if last.CheckDate == yesterday {
				consecutive = last.ConsecutiveDays + 1
			}
		case !dbPkg.IsNotFound(err):
			return err
		}

		checkIn = &model.CheckIn{
			UserID:          userID,
			CheckDate:       today,
			ConsecutiveDays: consecutive,
			Points:          checkInReward(consecutive),
		}
		if err := repo.CreateCheckIn(ctx, checkIn); err != nil {
			if dbPkg.IsDuplicateKey(err) {
				return errs.Business("今日已签到，请明天再来")
			}
			return err
		}

		_, err = s.addPoints(ctx, repo, userID, checkIn.Points, model.PointsTypeCheckIn,
			fmt.Sprintf("每日签到（连续%d天）", consecutive), checkIn.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCheckIn()
	metrics.RecordPointsAwarded(model.PointsTypeCheckIn, checkIn.Points)
	logger.Info("用户签到",
		zap.String("user_id", userID),
		zap.Int("consecutive_days", checkIn.ConsecutiveDays),
		zap.Int("points", checkIn.Points),
	)
	return checkIn, nil
}

func checkInReward(consecutive int) int {
	switch {
	case consecutive >= 7:
		return checkInStreak7
	case consecutive >= 3:
		return checkInStreak3
	default:
		return checkInBasePoints
	}
}

// AddPoints 增加积分并记录流水
func (s *PointsService) AddPoints(ctx context.Context, userID string, points int, pointsType, description, relatedID string) (*model.PointsLog, error) {
	if points <= 0 {
		return nil, errs.Validation("积分必须为正数", nil)
	}
	var log *model.PointsLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		log, err = s.addPoints(ctx, s.repo.WithTx(tx), userID, points, pointsType, description, relatedID)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordPointsAwarded(pointsType, points)
	return log, nil
}

func (s *PointsService) addPoints(ctx context.Context, repo *repository.PointsRepository, userID string, points int, pointsType, description, relatedID string) (*model.PointsLog, error) {
	if err := s.ensureAccount(ctx, repo, userID); err != nil {
		return nil, err
	}
	if err := repo.AdjustBalance(ctx, userID, points); err != nil {
		return nil, err
	}
	log := &model.PointsLog{
		UserID:      userID,
		Points:      points,
		Type:        pointsType,
		Description: description,
		RelatedID:   relatedID,
		CreatedAt:   s.now(),
	}
	if err := repo.AppendLog(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// ConsumePoints 消耗积分，可用积分不足时返回校验错误
func (s *PointsService) ConsumePoints(ctx context.Context, userID string, points int, pointsType, description, relatedID string) (*model.PointsLog, error) {
	if points <= 0 {
		return nil, errs.Validation("积分必须为正数", nil)
	}
	var log *model.PointsLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.ensureAccount(ctx, repo, userID); err != nil {
			return err
		}
		ok, err := repo.ConsumeIfEnough(ctx, userID, points)
		if err != nil {
			return err
		}
		if !ok {
			return errs.Validation("积分不足", nil)
		}
		log = &model.PointsLog{
			UserID:      userID,
			Points:      -points,
			Type:        pointsType,
			Description: description,
			RelatedID:   relatedID,
			CreatedAt:   s.now(),
		}
		return repo.AppendLog(ctx, log)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordPointsConsumed(points)
	return log, nil
}

// ensureAccount 账户不存在时创建
func (s *PointsService) ensureAccount(ctx context.Context, repo *repository.PointsRepository, userID string) error {
	_, err := repo.GetAccount(ctx, userID)
	if err == nil {
		return nil
	}
	if !dbPkg.IsNotFound(err) {
		return err
	}
	_, err = repo.CreateAccount(ctx, userID)
	return err
}

// GetUserPoints 获取积分账户，首次访问时创建
func (s *PointsService) GetUserPoints(ctx context.Context, userID string) (*model.UserPoints, error) {
	if err := s.ensureAccount(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	return s.repo.GetAccount(ctx, userID)
}

// QueryLogs 查询积分流水
func (s *PointsService) QueryLogs(ctx context.Context, userID string, pointsType *string, page, pageSize int) (*PageResult[model.PointsLog], error) {
	logs, total, err := s.repo.QueryLogs(ctx, repository.PointsLogFilter{UserID: userID, Type: pointsType}, pageOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(logs, total, page, pageSize), nil
}

// Exchange 积分兑换
func (s *PointsService) Exchange(ctx context.Context, userID string, in ExchangeInput) (*model.PointsLog, error) {
	description := in.Description
	if description == "" {
		description = "积分兑换：" + in.Type
	}
	return s.ConsumePoints(ctx, userID, in.Points, model.PointsTypeExchange, description, in.RelatedID)
}

// AddWatchVideoPoints 观看视频奖励，每次最多20分，每日上限100分
func (s *PointsService) AddWatchVideoPoints(ctx context.Context, userID string, watchTime int) (*WatchReward, error) {
	todaySum, err := s.repo.SumSince(ctx, userID, model.PointsTypeWatchVideo, startOfDay(s.now()))
	if err != nil {
		return nil, err
	}
	if todaySum >= watchVideoDailyCap {
		return &WatchReward{Message: "今日观看视频积分已达上限"}, nil
	}
	if watchTime < watchVideoMinSecond {
		return &WatchReward{Message: "观看时长不足5分钟"}, nil
	}

	points := min(watchVideoPoints, watchVideoDailyCap-todaySum)
	if _, err := s.AddPoints(ctx, userID, points, model.PointsTypeWatchVideo,
		fmt.Sprintf("观看视频（%d分钟）", watchTime/60), ""); err != nil {
		return nil, err
	}
	return &WatchReward{Points: points, Message: "积分已到账"}, nil
}

// AddWatchLivePoints 观看直播满1分钟奖励10分
func (s *PointsService) AddWatchLivePoints(ctx context.Context, userID, liveID string, watchTime int) (*WatchReward, error) {
	if watchTime < watchLiveMinSecond {
		return &WatchReward{Message: "观看时长不足1分钟"}, nil
	}
	if _, err := s.AddPoints(ctx, userID, watchLivePoints, model.PointsTypeWatchLive,
		fmt.Sprintf("观看直播（%d分钟）", watchTime/60), liveID); err != nil {
		return nil, err
	}
	return &WatchReward{Points: watchLivePoints, Message: "积分已到账"}, nil
}
