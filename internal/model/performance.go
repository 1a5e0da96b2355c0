package model

import "time"

// PerformanceRecord 用户在某个级别上的累计答题统计，(user_id, level) 唯一
type PerformanceRecord struct {
	ID                     uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                 uint      `gorm:"not null;uniqueIndex:idx_performance_user_level,priority:1;type:bigint unsigned" json:"user_id"`
	Level                  string    `gorm:"size:100;not null;uniqueIndex:idx_performance_user_level,priority:2" json:"level"`
	TotalQuizzes           int       `gorm:"not null" json:"total_quizzes"`
	TotalQuestionsAnswered int       `gorm:"not null" json:"total_questions_answered"`
	TotalGoodAnswers       int       `gorm:"not null" json:"total_good_answers"`
	SuccessRate            float64   `gorm:"not null" json:"success_rate"`
	BestScore              float64   `gorm:"not null" json:"best_score"`
	LastUpdated            time.Time `gorm:"not null;index" json:"last_updated"`
}

func (PerformanceRecord) TableName() string {
	return "quiz_performance"
}

// Completion 一次完成的测验
type Completion struct {
	UserID         uint
	Level          string
	CorrectAnswers int
	TotalQuestions int
}

// Score 单次测验得分百分比，题目数为 0 时得分为 0
func (c Completion) Score() float64 {
	return Percentage(c.CorrectAnswers, c.TotalQuestions)
}

// Percentage returns 100*part/whole, or 0 when whole is not positive.
func Percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

// Apply folds a completion into the aggregate. SuccessRate is recomputed from
// the running totals, never averaged from per-quiz rates.
func (r *PerformanceRecord) Apply(c Completion, now time.Time) {
	score := c.Score()

	r.TotalQuizzes++
	r.TotalQuestionsAnswered += c.TotalQuestions
	r.TotalGoodAnswers += c.CorrectAnswers
	r.SuccessRate = Percentage(r.TotalGoodAnswers, r.TotalQuestionsAnswered)
	if r.TotalQuizzes == 1 || score > r.BestScore {
		r.BestScore = score
	}
	r.LastUpdated = now
}
