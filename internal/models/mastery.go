package models

import (
	"math"
	"time"
)

// MasteryScore is the rolling aggregate for one (user, tenant, category,
// subcategory) tuple, recomputed incrementally on every answer event.
type MasteryScore struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	TenantID       string    `json:"tenantId"`
	CategoryID     string    `json:"categoryId"`
	Subcategory    string    `json:"subcategory"`
	CorrectAnswers int       `json:"correctAnswers"`
	TotalAnswers   int       `json:"totalAnswers"`
	RollingAverage int       `json:"rollingAverage"` // round(correct/total*100)
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Record folds one answer into the running totals and recomputes the
// rolling average.
func (m *MasteryScore) Record(correct bool) {
	m.TotalAnswers++
	if correct {
		m.CorrectAnswers++
	}
	m.RollingAverage = int(math.Round(float64(m.CorrectAnswers) / float64(m.TotalAnswers) * 100))
}
