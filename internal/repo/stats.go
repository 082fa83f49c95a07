package repo

import (
	"context"
	"math"
	"sort"
	"time"
)

// CategoryBreakdown is the per-(category, subcategory) slice of a user's
// mastery, derived from the rolling aggregates.
type CategoryBreakdown struct {
	CategoryID     string `json:"categoryId"`
	Subcategory    string `json:"subcategory"`
	RollingAverage int    `json:"rollingAverage"`
	TotalAnswers   int    `json:"totalAnswers"`
}

// UserStatsResult aggregates a user's derived statistics.
type UserStatsResult struct {
	TotalQuizzes     int                 `json:"totalQuizzes"`
	CompletedQuizzes int                 `json:"completedQuizzes"`
	PassedQuizzes    int                 `json:"passedQuizzes"`
	AverageScore     float64             `json:"averageScore"`
	CurrentStreak    int                 `json:"currentStreak"` // consecutive study days
	Breakdown        []CategoryBreakdown `json:"breakdown"`
}

// UserStats computes the derived statistics for one user from quiz attempts
// and mastery aggregates.
func (r *Repo) UserStats(ctx context.Context, sess Session, userID string) (*UserStatsResult, error) {
	quizzes, err := r.ListQuizzesForUser(ctx, sess, userID)
	if err != nil {
		return nil, err
	}

	res := &UserStatsResult{TotalQuizzes: len(quizzes)}
	scoreSum := 0.0
	var days []time.Time
	for _, q := range quizzes {
		if !q.IsSubmitted() {
			continue
		}
		res.CompletedQuizzes++
		if q.IsPassing {
			res.PassedQuizzes++
		}
		scoreSum += q.Score
		days = append(days, *q.CompletedAt)
	}
	if res.CompletedQuizzes > 0 {
		res.AverageScore = math.Round(scoreSum/float64(res.CompletedQuizzes)*100) / 100
	}
	res.CurrentStreak = streakDays(days, time.Now().UTC())

	mastery, err := r.ListMastery(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, m := range mastery {
		res.Breakdown = append(res.Breakdown, CategoryBreakdown{
			CategoryID:     m.CategoryID,
			Subcategory:    m.Subcategory,
			RollingAverage: m.RollingAverage,
			TotalAnswers:   m.TotalAnswers,
		})
	}
	sort.Slice(res.Breakdown, func(i, j int) bool {
		a, b := res.Breakdown[i], res.Breakdown[j]
		if a.CategoryID != b.CategoryID {
			return a.CategoryID < b.CategoryID
		}
		return a.Subcategory < b.Subcategory
	})
	return res, nil
}

// streakDays counts consecutive days with at least one completed quiz,
// ending today or yesterday (a streak survives until a full day is missed).
func streakDays(stamps []time.Time, now time.Time) int {
	if len(stamps) == 0 {
		return 0
	}
	active := make(map[string]bool, len(stamps))
	for _, ts := range stamps {
		active[ts.UTC().Format("2006-01-02")] = true
	}

	day := now.Truncate(24 * time.Hour)
	if !active[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
		if !active[day.Format("2006-01-02")] {
			return 0
		}
	}

	streak := 0
	for active[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
