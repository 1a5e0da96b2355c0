package repository

import (
	"context"

	"quiz_stats_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

// AwardIfAbsent inserts the award unless the user already holds a badge with
// the same name. It reports whether a new row was written.
func (r *BadgeRepository) AwardIfAbsent(ctx context.Context, award *model.BadgeAward) (bool, error) {
	result := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(award)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *BadgeRepository) FindByUserID(ctx context.Context, userID uint) ([]model.BadgeAward, error) {
	var awards []model.BadgeAward
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("awarded_at asc, id asc").
		Find(&awards).Error
	if err != nil {
		return nil, err
	}
	return awards, nil
}
