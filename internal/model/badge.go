package model

import "time"

// BadgeAward 已颁发的徽章，(user_id, badge_name) 唯一
type BadgeAward struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_badge_user_name,priority:1;type:bigint unsigned" json:"user_id"`
	BadgeName string    `gorm:"size:191;not null;uniqueIndex:idx_badge_user_name,priority:2" json:"badge_name"`
	BadgeID   string    `gorm:"size:255;not null" json:"badge_id"`
	AwardedAt time.Time `gorm:"not null" json:"awarded_at"`
}

func (BadgeAward) TableName() string {
	return "quiz_badges"
}

type BadgeFamilyKind string

const (
	FamilyCompletion  BadgeFamilyKind = "completion"
	FamilySuccessRate BadgeFamilyKind = "success_rate"
)

// BadgeFamily 一组阈值徽章，Thresholds[i] 对应 Names[i] 和 Images[i]
type BadgeFamily struct {
	Enabled    bool
	Thresholds []float64
	Names      []string
	Images     []string
}

// Tier returns the name and image configured at index i; missing entries are empty.
func (f BadgeFamily) Tier(i int) (name, image string) {
	if i < len(f.Names) {
		name = f.Names[i]
	}
	if i < len(f.Images) {
		image = f.Images[i]
	}
	return name, image
}

// BadgeConfiguration is an immutable snapshot of the administrator's badge settings.
type BadgeConfiguration struct {
	Disabled                 bool
	MinQuizzesForSuccessRate int
	Completion               BadgeFamily
	SuccessRate              BadgeFamily
}

// Level 管理员配置的测验级别
type Level struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Free  bool   `json:"free"`
}
