package repository

import (
	"context"
	"time"

	"cme-platform/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PointsLogFilter 积分流水查询条件
type PointsLogFilter struct {
	UserID string
	Type   *string
}

func (f PointsLogFilter) apply(db *gorm.DB) *gorm.DB {
	db = db.Where("user_id = ?", f.UserID)
	if f.Type != nil {
		db = db.Where("type = ?", *f.Type)
	}
	return db
}

// PointsRepository 积分账户、流水与签到数据仓储
type PointsRepository struct {
	orm *gorm.DB
}

func NewPointsRepository(db *gorm.DB) *PointsRepository {
	return &PointsRepository{orm: db}
}

func (r *PointsRepository) WithTx(tx *gorm.DB) *PointsRepository {
	return &PointsRepository{orm: tx}
}

// GetAccount 获取积分账户
func (r *PointsRepository) GetAccount(ctx context.Context, userID string) (*model.UserPoints, error) {
	var up model.UserPoints
	if err := r.orm.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&up).Error; err != nil {
		return nil, err
	}
	return &up, nil
}

// CreateAccount 创建空积分账户，账户已存在时不做任何事，返回是否实际创建
func (r *PointsRepository) CreateAccount(ctx context.Context, userID string) (bool, error) {
	res := r.orm.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model.UserPoints{UserID: userID})
	return res.RowsAffected > 0, res.Error
}

// AdjustBalance 原子调整余额
// 增加积分：total、available 同时增加；消耗积分：available 减少、used 增加
func (r *PointsRepository) AdjustBalance(ctx context.Context, userID string, delta int) error {
	var fields map[string]interface{}
	if delta >= 0 {
		fields = map[string]interface{}{
			"total_points":     gorm.Expr("total_points + ?", delta),
			"available_points": gorm.Expr("available_points + ?", delta),
			"updated_at":       time.Now(),
		}
	} else {
		fields = map[string]interface{}{
			"available_points": gorm.Expr("available_points - ?", -delta),
			"used_points":      gorm.Expr("used_points + ?", -delta),
			"updated_at":       time.Now(),
		}
	}
	return r.orm.WithContext(ctx).Model(&model.UserPoints{}).Where("user_id = ?", userID).UpdateColumns(fields).Error
}

// ConsumeIfEnough 可用积分足够时扣减，返回是否扣减成功
func (r *PointsRepository) ConsumeIfEnough(ctx context.Context, userID string, points int) (bool, error) {
	res := r.orm.WithContext(ctx).Model(&model.UserPoints{}).
		Where("user_id = ? AND available_points >= ?", userID, points).
		UpdateColumns(map[string]interface{}{
			"available_points": gorm.Expr("available_points - ?", points),
			"used_points":      gorm.Expr("used_points + ?", points),
			"updated_at":       time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// AppendLog 追加积分流水
func (r *PointsRepository) AppendLog(ctx context.Context, log *model.PointsLog) error {
	return r.orm.WithContext(ctx).Create(log).Error
}

// SumSince 统计某类型自 since 起的积分合计
func (r *PointsRepository) SumSince(ctx context.Context, userID, pointsType string, since time.Time) (int, error) {
	var sum int
	err := r.orm.WithContext(ctx).Model(&model.PointsLog{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ? AND type = ? AND created_at >= ?", userID, pointsType, since).
		Scan(&sum).Error
	return sum, err
}

func (r *PointsRepository) QueryLogs(ctx context.Context, filter PointsLogFilter, page Page) ([]model.PointsLog, int64, error) {
	var logs []model.PointsLog
	query := filter.apply(r.orm.WithContext(ctx).Model(&model.PointsLog{}))
	total, err := findPage(query, page, &logs, func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	})
	return logs, total, err
}

// GetCheckIn 某日签到记录
func (r *PointsRepository) GetCheckIn(ctx context.Context, userID, checkDate string) (*model.CheckIn, error) {
	var c model.CheckIn
	if err := r.orm.WithContext(ctx).Where("user_id = ? AND check_date = ?", userID, checkDate).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// LatestCheckIn 最近一次签到
func (r *PointsRepository) LatestCheckIn(ctx context.Context, userID string) (*model.CheckIn, error) {
	var c model.CheckIn
	if err := r.orm.WithContext(ctx).Where("user_id = ?", userID).Order("check_date DESC").First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PointsRepository) CreateCheckIn(ctx context.Context, checkIn *model.CheckIn) error {
	return r.orm.WithContext(ctx).Create(checkIn).Error
}
