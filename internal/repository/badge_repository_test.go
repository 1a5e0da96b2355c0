package repository

import (
	"context"
	"testing"
	"time"

	"quiz_stats_backend/internal/model"
	"quiz_stats_backend/internal/repository/testutil"
)

func TestAwardIfAbsentIsIdempotent(t *testing.T) {
	repo := NewBadgeRepository(testutil.DB(t))
	ctx := context.Background()

	award := func() *model.BadgeAward {
		return &model.BadgeAward{UserID: 5, BadgeName: "Bronze Beginner", BadgeID: "bronze.png", AwardedAt: time.Now()}
	}

	created, err := repo.AwardIfAbsent(ctx, award())
	if err != nil {
		t.Fatalf("AwardIfAbsent: %v", err)
	}
	if !created {
		t.Fatalf("first award: want created")
	}

	created, err = repo.AwardIfAbsent(ctx, award())
	if err != nil {
		t.Fatalf("AwardIfAbsent (again): %v", err)
	}
	if created {
		t.Fatalf("second award: want ignored")
	}

	// same name for another user is a separate award
	other := award()
	other.UserID = 6
	if created, err = repo.AwardIfAbsent(ctx, other); err != nil || !created {
		t.Fatalf("other user: created=%v err=%v", created, err)
	}

	awards, err := repo.FindByUserID(ctx, 5)
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if len(awards) != 1 {
		t.Fatalf("awards: want=1 got=%d", len(awards))
	}
}
