package models

import (
	"fmt"
	"time"
)

// PassingScore is the fixed percentage threshold for a passing attempt.
const PassingScore = 85.0

// Quiz is a single attempt. Lifecycle: created (filter known, question set
// unset) -> materialized (QuestionIDs frozen, MaterializedAt set) ->
// submitted (scored, CompletedAt set). The frozen QuestionIDs make grading
// reproducible even if the question bank changes mid-attempt.
type Quiz struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	TenantID       string         `json:"tenantId"`
	CategoryIDs    []string       `json:"categoryIds"`
	Subcategory    string         `json:"subcategory,omitempty"`
	Difficulty     string         `json:"difficulty,omitempty"`
	QuestionCount  int            `json:"questionCount"`
	QuestionIDs    []string       `json:"questionIds,omitempty"`
	Answers        map[string]int `json:"answers,omitempty"` // question ID -> chosen option
	Score          float64        `json:"score"`
	CorrectAnswers int            `json:"correctAnswers"`
	TotalQuestions int            `json:"totalQuestions"`
	IsPassing      bool           `json:"isPassing"`
	StartedAt      time.Time      `json:"startedAt"`
	MaterializedAt *time.Time     `json:"materializedAt,omitempty"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
}

// Validate checks the creation-time invariants.
func (q *Quiz) Validate() error {
	if q.UserID == "" {
		return fmt.Errorf("quiz requires a user")
	}
	if q.TenantID == "" {
		return fmt.Errorf("quiz requires a tenant")
	}
	if len(q.CategoryIDs) == 0 {
		return fmt.Errorf("quiz requires at least one category")
	}
	if q.QuestionCount < 1 {
		return fmt.Errorf("quiz requires a positive question count, got %d", q.QuestionCount)
	}
	return nil
}

// IsMaterialized reports whether the question set has been frozen. The
// explicit stamp, not the set length, carries the state: a short bank may
// legitimately freeze an empty set.
func (q *Quiz) IsMaterialized() bool {
	return q.MaterializedAt != nil
}

// IsSubmitted reports whether the attempt has been scored.
func (q *Quiz) IsSubmitted() bool {
	return q.CompletedAt != nil
}
