package repository

import (
	"context"
	"time"

	"quiz_stats_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PerformanceRepository struct {
	DB *gorm.DB
}

func NewPerformanceRepository(db *gorm.DB) *PerformanceRepository {
	return &PerformanceRepository{DB: db}
}

func (r *PerformanceRepository) FindByUserAndLevel(ctx context.Context, userID uint, level string) (*model.PerformanceRecord, error) {
	var record model.PerformanceRecord
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND level = ?", userID, level).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *PerformanceRepository) FindByUserID(ctx context.Context, userID uint) ([]model.PerformanceRecord, error) {
	var records []model.PerformanceRecord
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("level asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ApplyCompletion folds c into the (user, level) aggregate inside one
// transaction. The row is created empty if missing and then locked, so two
// concurrent completions for the same pair cannot lose an update.
// It returns the record as it was before and after the completion.
func (r *PerformanceRepository) ApplyCompletion(ctx context.Context, c model.Completion, now time.Time) (before, after model.PerformanceRecord, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		empty := &model.PerformanceRecord{
			UserID:      c.UserID,
			Level:       c.Level,
			LastUpdated: now,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(empty).Error; err != nil {
			return err
		}

		var record model.PerformanceRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND level = ?", c.UserID, c.Level).
			First(&record).Error; err != nil {
			return err
		}

		before = record
		record.Apply(c, now)
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		after = record
		return nil
	})
	return before, after, err
}

// FindUpdatedBetween 查询 last_updated 落在 [from, to) 内的记录，userID 为 nil 时查询所有用户
func (r *PerformanceRepository) FindUpdatedBetween(ctx context.Context, from, to time.Time, userID *uint) ([]model.PerformanceRecord, error) {
	var records []model.PerformanceRecord
	db := r.DB.WithContext(ctx).
		Where("last_updated >= ? AND last_updated < ?", from, to)
	if userID != nil {
		db = db.Where("user_id = ?", *userID)
	}
	err := db.Order("user_id asc, level asc").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// BestScoresByLevel 每个级别所有用户中的最高分
func (r *PerformanceRepository) BestScoresByLevel(ctx context.Context) (map[string]float64, error) {
	var rows []struct {
		Level     string
		BestScore float64
	}
	err := r.DB.WithContext(ctx).
		Model(&model.PerformanceRecord{}).
		Select("level, MAX(best_score) AS best_score").
		Group("level").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(rows))
	for _, row := range rows {
		scores[row.Level] = row.BestScore
	}
	return scores, nil
}
