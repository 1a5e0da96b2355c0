package model

import (
	"math"
	"testing"
	"time"
)

func TestPercentage(t *testing.T) {
	cases := []struct {
		part, whole int
		want        float64
	}{
		{8, 10, 80},
		{0, 10, 0},
		{10, 10, 100},
		{3, 0, 0},
		{1, 3, 100.0 / 3},
	}
	for _, tc := range cases {
		if got := Percentage(tc.part, tc.whole); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Percentage(%d,%d): want=%v got=%v", tc.part, tc.whole, tc.want, got)
		}
	}
}

func TestApplyFirstAndSecondCompletion(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := PerformanceRecord{UserID: 42, Level: "beginner"}

	r.Apply(Completion{CorrectAnswers: 8, TotalQuestions: 10}, now)
	if r.TotalQuizzes != 1 || r.TotalQuestionsAnswered != 10 || r.TotalGoodAnswers != 8 {
		t.Fatalf("after first: unexpected counters %+v", r)
	}
	if r.SuccessRate != 80 || r.BestScore != 80 {
		t.Fatalf("after first: want rate=80 best=80 got rate=%v best=%v", r.SuccessRate, r.BestScore)
	}
	if !r.LastUpdated.Equal(now) {
		t.Fatalf("last updated: want=%v got=%v", now, r.LastUpdated)
	}

	r.Apply(Completion{CorrectAnswers: 10, TotalQuestions: 10}, now.Add(time.Hour))
	if r.TotalQuizzes != 2 || r.TotalQuestionsAnswered != 20 || r.TotalGoodAnswers != 18 {
		t.Fatalf("after second: unexpected counters %+v", r)
	}
	if r.SuccessRate != 90 || r.BestScore != 100 {
		t.Fatalf("after second: want rate=90 best=100 got rate=%v best=%v", r.SuccessRate, r.BestScore)
	}
}

func TestApplyRecomputesRateFromTotals(t *testing.T) {
	quizzes := []Completion{
		{CorrectAnswers: 1, TotalQuestions: 2},
		{CorrectAnswers: 9, TotalQuestions: 10},
		{CorrectAnswers: 0, TotalQuestions: 5},
		{CorrectAnswers: 7, TotalQuestions: 7},
	}

	var r PerformanceRecord
	var good, total int
	best := 0.0
	for i, q := range quizzes {
		prevBest := r.BestScore
		r.Apply(q, time.Now())
		good += q.CorrectAnswers
		total += q.TotalQuestions
		if s := q.Score(); s > best {
			best = s
		}
		if i > 0 && r.BestScore < prevBest {
			t.Fatalf("best score decreased: prev=%v got=%v", prevBest, r.BestScore)
		}
	}

	want := 100 * float64(good) / float64(total)
	if math.Abs(r.SuccessRate-want) > 1e-9 {
		t.Fatalf("success rate: want=%v got=%v", want, r.SuccessRate)
	}
	// the running average of per-quiz rates would be (50+90+0+100)/4 = 60
	if math.Abs(r.SuccessRate-60) < 1e-9 {
		t.Fatalf("success rate must not be an average of per-quiz rates")
	}
	if r.BestScore != best {
		t.Fatalf("best score: want=%v got=%v", best, r.BestScore)
	}
}

func TestApplyZeroQuestionQuiz(t *testing.T) {
	var r PerformanceRecord
	r.Apply(Completion{CorrectAnswers: 0, TotalQuestions: 0}, time.Now())
	if r.TotalQuizzes != 1 || r.SuccessRate != 0 || r.BestScore != 0 {
		t.Fatalf("zero-question quiz: unexpected %+v", r)
	}
}

func TestBadgeFamilyTier(t *testing.T) {
	f := BadgeFamily{Thresholds: []float64{5, 10, 20}, Names: []string{"Bronze", "Silver"}, Images: []string{"b.png"}}
	if n, img := f.Tier(0); n != "Bronze" || img != "b.png" {
		t.Fatalf("tier 0: got %q %q", n, img)
	}
	if n, img := f.Tier(1); n != "Silver" || img != "" {
		t.Fatalf("tier 1: got %q %q", n, img)
	}
	if n, img := f.Tier(2); n != "" || img != "" {
		t.Fatalf("tier 2: got %q %q", n, img)
	}
}
