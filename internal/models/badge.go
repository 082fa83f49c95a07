package models

import (
	"fmt"
	"time"
)

// RequirementType enumerates the variants of a badge requirement.
type RequirementType string

const (
	RequirementQuizCount RequirementType = "quiz_count" // completed quizzes
	RequirementStreak    RequirementType = "streak"     // consecutive study days
	RequirementMastery   RequirementType = "mastery"    // rolling average threshold
)

// Requirement is the tagged condition a user must meet to earn a badge.
type Requirement struct {
	Type   RequirementType `json:"type"`
	Target int             `json:"target"`
}

// Validate checks the tag and target.
func (r Requirement) Validate() error {
	switch r.Type {
	case RequirementQuizCount, RequirementStreak, RequirementMastery:
	default:
		return fmt.Errorf("invalid requirement type %q", r.Type)
	}
	if r.Target < 1 {
		return fmt.Errorf("requirement target must be positive, got %d", r.Target)
	}
	return nil
}

// Badge is an earnable award definition.
type Badge struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Requirement Requirement `json:"requirement"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Validate checks required fields.
func (b *Badge) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("badge name is required")
	}
	return b.Requirement.Validate()
}

// UserBadge records one earned badge, unique per (user, badge).
type UserBadge struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	BadgeID  string    `json:"badgeId"`
	EarnedAt time.Time `json:"earnedAt"`
}
