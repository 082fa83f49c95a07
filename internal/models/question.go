package models

import (
	"fmt"
	"time"
)

// Difficulty levels.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// ValidDifficulties returns all valid difficulty levels.
func ValidDifficulties() []string {
	return []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}
}

// Category groups questions inside a tenant. Subcategories are plain names
// scoped to their category.
type Category struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenantId"`
	Name          string    `json:"name"`
	Subcategories []string  `json:"subcategories,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Validate checks required fields.
func (c *Category) Validate() error {
	if c.TenantID == "" {
		return fmt.Errorf("category requires a tenant")
	}
	if c.Name == "" {
		return fmt.Errorf("category name is required")
	}
	return nil
}

// Question is a single quiz question. Once referenced by a completed quiz
// attempt it is immutable, so scoring stays reproducible.
type Question struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenantId"`
	CategoryID    string    `json:"categoryId"`
	Subcategory   string    `json:"subcategory"`
	Text          string    `json:"text"`
	Options       []string  `json:"options"`
	CorrectAnswer int       `json:"correctAnswer"` // index into Options
	Difficulty    string    `json:"difficulty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Validate checks required fields and that the correct answer points at an
// existing option.
func (q *Question) Validate() error {
	if q.TenantID == "" {
		return fmt.Errorf("question requires a tenant")
	}
	if q.CategoryID == "" {
		return fmt.Errorf("question requires a category")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question requires at least 2 options, got %d", len(q.Options))
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("correct answer %d out of range for %d options", q.CorrectAnswer, len(q.Options))
	}
	switch q.Difficulty {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
	default:
		return fmt.Errorf("invalid difficulty %q", q.Difficulty)
	}
	return nil
}
