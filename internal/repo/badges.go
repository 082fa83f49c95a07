package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asteroid-belt/recall/internal/errs"
	"github.com/asteroid-belt/recall/internal/models"
)

// CreateBadge stores a new badge definition.
func (r *Repo) CreateBadge(ctx context.Context, b models.Badge) (*models.Badge, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	b.CreatedAt = time.Now().UTC()
	rec, err := toRecord(&b)
	if err != nil {
		return nil, err
	}
	id, err := r.store.Add(ctx, CollectionBadges, rec)
	if err != nil {
		return nil, fmt.Errorf("create badge: %w", err)
	}
	b.ID = id
	return &b, nil
}

// ListBadges returns every badge definition.
func (r *Repo) ListBadges(ctx context.Context) ([]models.Badge, error) {
	recs, err := r.store.GetAll(ctx, CollectionBadges)
	if err != nil {
		return nil, err
	}
	badges := make([]models.Badge, 0, len(recs))
	for _, rec := range recs {
		var b models.Badge
		if err := fromRecord(rec, &b); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, nil
}

// AwardBadge records an earned badge, once per (user, badge).
func (r *Repo) AwardBadge(ctx context.Context, userID, badgeID string) (*models.UserBadge, error) {
	_, err := r.store.GetOneByIndex(ctx, CollectionUserBadges, "user_badge", userID, badgeID)
	if err == nil {
		return nil, fmt.Errorf("badge %s for user %s: %w", badgeID, userID, errs.ErrKeyExists)
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	ub := models.UserBadge{
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: time.Now().UTC(),
	}
	rec, err := toRecord(&ub)
	if err != nil {
		return nil, err
	}
	id, err := r.store.Add(ctx, CollectionUserBadges, rec)
	if err != nil {
		return nil, fmt.Errorf("award badge: %w", err)
	}
	ub.ID = id
	return &ub, nil
}

// ListUserBadges returns a user's earned badges.
func (r *Repo) ListUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	recs, err := r.store.GetByIndex(ctx, CollectionUserBadges, "user", userID)
	if err != nil {
		return nil, err
	}
	earned := make([]models.UserBadge, 0, len(recs))
	for _, rec := range recs {
		var ub models.UserBadge
		if err := fromRecord(rec, &ub); err != nil {
			return nil, err
		}
		earned = append(earned, ub)
	}
	return earned, nil
}

// EvaluateBadges awards every badge whose requirement the user now meets and
// returns the newly earned ones.
func (r *Repo) EvaluateBadges(ctx context.Context, sess Session, userID string) ([]models.UserBadge, error) {
	badges, err := r.ListBadges(ctx)
	if err != nil {
		return nil, err
	}
	earned, err := r.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(earned))
	for _, ub := range earned {
		have[ub.BadgeID] = true
	}

	stats, err := r.UserStats(ctx, sess, userID)
	if err != nil {
		return nil, err
	}
	mastery, err := r.ListMastery(ctx, userID)
	if err != nil {
		return nil, err
	}
	bestMastery := 0
	for _, m := range mastery {
		if m.RollingAverage > bestMastery {
			bestMastery = m.RollingAverage
		}
	}

	var awarded []models.UserBadge
	for _, b := range badges {
		if have[b.ID] || !requirementMet(b.Requirement, stats, bestMastery) {
			continue
		}
		ub, err := r.AwardBadge(ctx, userID, b.ID)
		if err != nil {
			return nil, err
		}
		awarded = append(awarded, *ub)
	}
	return awarded, nil
}

func requirementMet(req models.Requirement, stats *UserStatsResult, bestMastery int) bool {
	switch req.Type {
	case models.RequirementQuizCount:
		return stats.CompletedQuizzes >= req.Target
	case models.RequirementStreak:
		return stats.CurrentStreak >= req.Target
	case models.RequirementMastery:
		return bestMastery >= req.Target
	default:
		return false
	}
}
