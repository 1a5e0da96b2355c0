package repository

import (
	"context"
	"testing"
	"time"

	"quiz_stats_backend/internal/model"
	"quiz_stats_backend/internal/repository/testutil"
)

func TestPeriodicUpsertRefreshesExistingWindow(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPeriodicStatisticsRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)
	rec := model.PerformanceRecord{UserID: 9, Level: "beginner", TotalQuizzes: 5, SuccessRate: 80}

	if err := repo.Upsert(ctx, []model.PeriodicStatistics{model.SnapshotOf(rec, model.PeriodWeekly, start, end, time.Now())}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rec.TotalQuizzes = 6
	if err := repo.Upsert(ctx, []model.PeriodicStatistics{model.SnapshotOf(rec, model.PeriodWeekly, start, end, time.Now())}); err != nil {
		t.Fatalf("Upsert (again): %v", err)
	}

	rows, err := repo.FindByUser(ctx, 9, model.PeriodWeekly, 0)
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows: want=1 got=%d", len(rows))
	}
	if rows[0].TotalQuizzes != 6 || rows[0].SuccessRate != 80 {
		t.Fatalf("row: unexpected %+v", rows[0])
	}

	monthly, err := repo.FindByUser(ctx, 9, model.PeriodMonthly, 0)
	if err != nil {
		t.Fatalf("FindByUser(monthly): %v", err)
	}
	if len(monthly) != 0 {
		t.Fatalf("monthly rows: want=0 got=%d", len(monthly))
	}
}

func TestPeriodicUpsertEmpty(t *testing.T) {
	repo := NewPeriodicStatisticsRepository(testutil.DB(t))
	if err := repo.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("Upsert(nil): %v", err)
	}
}
