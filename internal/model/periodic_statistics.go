package model

import (
	"time"

	"gorm.io/datatypes"
)

type PeriodType string

const (
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
)

func (p PeriodType) Valid() bool {
	return p == PeriodWeekly || p == PeriodMonthly
}

// PeriodicStatistics 某个周期结束时 PerformanceRecord 的快照
type PeriodicStatistics struct {
	ID                     uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                 uint           `gorm:"not null;uniqueIndex:idx_periodic_window,priority:1;type:bigint unsigned" json:"user_id"`
	Level                  string         `gorm:"size:100;not null;uniqueIndex:idx_periodic_window,priority:2" json:"level"`
	PeriodType             PeriodType     `gorm:"size:20;not null;uniqueIndex:idx_periodic_window,priority:3" json:"period_type"`
	PeriodStart            datatypes.Date `gorm:"not null;uniqueIndex:idx_periodic_window,priority:4" json:"period_start"`
	PeriodEnd              datatypes.Date `gorm:"not null;uniqueIndex:idx_periodic_window,priority:5" json:"period_end"`
	TotalQuizzes           int            `gorm:"not null" json:"total_quizzes"`
	TotalQuestionsAnswered int            `gorm:"not null" json:"total_questions_answered"`
	TotalGoodAnswers       int            `gorm:"not null" json:"total_good_answers"`
	SuccessRate            float64        `gorm:"not null" json:"success_rate"`
	BestScore              float64        `gorm:"not null" json:"best_score"`
	CreatedAt              time.Time      `json:"created_at"`
}

func (PeriodicStatistics) TableName() string {
	return "quiz_periodic_statistics"
}

// SnapshotOf copies the cumulative fields of r verbatim.
func SnapshotOf(r PerformanceRecord, periodType PeriodType, start, end time.Time, now time.Time) PeriodicStatistics {
	return PeriodicStatistics{
		UserID:                 r.UserID,
		Level:                  r.Level,
		PeriodType:             periodType,
		PeriodStart:            datatypes.Date(start),
		PeriodEnd:              datatypes.Date(end),
		TotalQuizzes:           r.TotalQuizzes,
		TotalQuestionsAnswered: r.TotalQuestionsAnswered,
		TotalGoodAnswers:       r.TotalGoodAnswers,
		SuccessRate:            r.SuccessRate,
		BestScore:              r.BestScore,
		CreatedAt:              now,
	}
}
