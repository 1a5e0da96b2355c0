package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"quiz_stats_backend/internal/model"
	"quiz_stats_backend/internal/repository"
	"quiz_stats_backend/internal/repository/testutil"
	"quiz_stats_backend/internal/util"
)

func newStatisticsService(t *testing.T) (*StatisticsService, *memCache) {
	t.Helper()
	c := newMemCache()
	svc := NewStatisticsService(repository.NewPerformanceRepository(testutil.DB(t)), c, 24*time.Hour)
	svc.now = fixedClock(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC))
	return svc, c
}

func TestRecordCompletionExample(t *testing.T) {
	svc, _ := newStatisticsService(t)
	ctx := context.Background()

	r, err := svc.RecordCompletion(ctx, 42, "beginner", 8, 10)
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if r.UserID != 42 || r.Level != "beginner" || r.TotalQuizzes != 1 || r.TotalQuestionsAnswered != 10 ||
		r.TotalGoodAnswers != 8 || r.SuccessRate != 80 || r.BestScore != 80 {
		t.Fatalf("first completion: unexpected %+v", r)
	}

	r, err = svc.RecordCompletion(ctx, 42, "beginner", 10, 10)
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if r.TotalQuizzes != 2 || r.TotalQuestionsAnswered != 20 || r.TotalGoodAnswers != 18 ||
		r.SuccessRate != 90 || r.BestScore != 100 {
		t.Fatalf("second completion: unexpected %+v", r)
	}
}

func TestRecordCompletionRateFromTotals(t *testing.T) {
	svc, _ := newStatisticsService(t)
	ctx := context.Background()

	quizzes := [][2]int{{3, 4}, {1, 10}, {6, 6}, {0, 3}}
	var good, total int
	var r *model.PerformanceRecord
	for _, q := range quizzes {
		var err error
		r, err = svc.RecordCompletion(ctx, 1, "advanced", q[0], q[1])
		if err != nil {
			t.Fatalf("RecordCompletion: %v", err)
		}
		good += q[0]
		total += q[1]
	}

	want := 100 * float64(good) / float64(total)
	if math.Abs(r.SuccessRate-want) > 1e-9 {
		t.Fatalf("success rate: want=%v got=%v", want, r.SuccessRate)
	}
	if r.BestScore != 100 {
		t.Fatalf("best score: want=100 got=%v", r.BestScore)
	}
}

func TestRecordCompletionClampsAndRejects(t *testing.T) {
	svc, _ := newStatisticsService(t)
	ctx := context.Background()

	r, err := svc.RecordCompletion(ctx, 5, "beginner", 12, 10)
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if r.TotalGoodAnswers != 10 || r.BestScore != 100 {
		t.Fatalf("clamp high: unexpected %+v", r)
	}

	r, err = svc.RecordCompletion(ctx, 5, "beginner", -3, 10)
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if r.TotalGoodAnswers != 10 || r.TotalQuestionsAnswered != 20 {
		t.Fatalf("clamp low: unexpected %+v", r)
	}

	if _, err := svc.RecordCompletion(ctx, 5, "beginner", 1, -1); !errors.Is(err, util.ErrInvalidCompletion) {
		t.Fatalf("negative total: want ErrInvalidCompletion got %v", err)
	}
}

func TestGetUserStatisticsCachedAndInvalidated(t *testing.T) {
	svc, c := newStatisticsService(t)
	ctx := context.Background()

	if _, err := svc.RecordCompletion(ctx, 42, "beginner", 8, 10); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}

	rows, err := svc.GetUserStatistics(ctx, 42)
	if err != nil {
		t.Fatalf("GetUserStatistics: %v", err)
	}
	if len(rows) != 1 || rows[0].TotalQuizzes != 1 {
		t.Fatalf("first read: unexpected %+v", rows)
	}
	if !c.has(userStatsCacheKey(42)) {
		t.Fatalf("user statistics should be cached after a read")
	}

	// a cached value is served without touching the database
	stale := []model.PerformanceRecord{{UserID: 42, Level: "beginner", TotalQuizzes: 99}}
	if err := c.Set(ctx, userStatsCacheKey(42), stale, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	rows, err = svc.GetUserStatistics(ctx, 42)
	if err != nil {
		t.Fatalf("GetUserStatistics: %v", err)
	}
	if rows[0].TotalQuizzes != 99 {
		t.Fatalf("cached read: want=99 got=%d", rows[0].TotalQuizzes)
	}

	if _, err := svc.RecordCompletion(ctx, 42, "beginner", 5, 10); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if c.has(userStatsCacheKey(42)) {
		t.Fatalf("completion should invalidate the user statistics cache")
	}
	rows, err = svc.GetUserStatistics(ctx, 42)
	if err != nil {
		t.Fatalf("GetUserStatistics: %v", err)
	}
	if rows[0].TotalQuizzes != 2 {
		t.Fatalf("fresh read: want=2 got=%d", rows[0].TotalQuizzes)
	}
}

func TestGetUserStatisticsEmpty(t *testing.T) {
	svc, _ := newStatisticsService(t)
	rows, err := svc.GetUserStatistics(context.Background(), 404)
	if err != nil {
		t.Fatalf("GetUserStatistics: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("want empty non-nil slice got %#v", rows)
	}
}

func TestGlobalBestInvalidatedOnlyWhenBestRises(t *testing.T) {
	svc, c := newStatisticsService(t)
	ctx := context.Background()

	if _, err := svc.RecordCompletion(ctx, 1, "beginner", 9, 10); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if _, err := svc.RecordCompletion(ctx, 2, "beginner", 6, 10); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}

	best, err := svc.GetGlobalBestScores(ctx)
	if err != nil {
		t.Fatalf("GetGlobalBestScores: %v", err)
	}
	if best["beginner"] != 90 {
		t.Fatalf("global best: want=90 got=%v", best["beginner"])
	}
	if !c.has(globalBestCacheKey) {
		t.Fatalf("global best should be cached after a read")
	}

	// user 1 does worse: the best score is unchanged
	if _, err := svc.RecordCompletion(ctx, 1, "beginner", 1, 10); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if !c.has(globalBestCacheKey) {
		t.Fatalf("global best cache should survive a completion that does not raise a best score")
	}

	if _, err := svc.RecordCompletion(ctx, 2, "beginner", 10, 10); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if c.has(globalBestCacheKey) {
		t.Fatalf("global best cache should be dropped when a best score rises")
	}

	best, err = svc.GetGlobalBestScores(ctx)
	if err != nil {
		t.Fatalf("GetGlobalBestScores: %v", err)
	}
	if best["beginner"] != 100 {
		t.Fatalf("global best: want=100 got=%v", best["beginner"])
	}
}

func TestGetUserComparison(t *testing.T) {
	svc, _ := newStatisticsService(t)
	ctx := context.Background()

	for _, c := range []struct {
		user    uint
		level   string
		correct int
		total   int
	}{
		{1, "beginner", 7, 10},
		{1, "advanced", 2, 4},
		{2, "beginner", 10, 10},
		{2, "intermediate", 3, 3},
	} {
		if _, err := svc.RecordCompletion(ctx, c.user, c.level, c.correct, c.total); err != nil {
			t.Fatalf("RecordCompletion: %v", err)
		}
	}

	got, err := svc.GetUserComparison(ctx, 1)
	if err != nil {
		t.Fatalf("GetUserComparison: %v", err)
	}
	want := []LevelComparison{
		{Level: "advanced", BestScore: 50, GlobalBest: 50},
		{Level: "beginner", BestScore: 70, GlobalBest: 100},
	}
	if len(got) != len(want) {
		t.Fatalf("comparison: want=%+v got=%+v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("comparison[%d]: want=%+v got=%+v", i, want[i], got[i])
		}
	}
}
