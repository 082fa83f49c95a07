package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asteroid-belt/recall/internal/errs"
	"github.com/asteroid-belt/recall/internal/models"
)

// RecordAnswer folds one answer event into the (user, category, subcategory)
// mastery row, creating it lazily on first answer.
func (r *Repo) RecordAnswer(ctx context.Context, sess Session, userID, categoryID, subcategory string, correct bool) error {
	rec, err := r.store.GetOneByIndex(ctx, CollectionMastery, "user_cat_sub", userID, categoryID, subcategory)

	var m models.MasteryScore
	switch {
	case err == nil:
		if err := fromRecord(rec, &m); err != nil {
			return err
		}
	case errors.Is(err, errs.ErrNotFound):
		m = models.MasteryScore{
			UserID:      userID,
			TenantID:    sess.TenantID,
			CategoryID:  categoryID,
			Subcategory: subcategory,
		}
	default:
		return err
	}

	m.Record(correct)
	m.UpdatedAt = time.Now().UTC()

	out, err := toRecord(&m)
	if err != nil {
		return err
	}
	if _, err := r.store.Put(ctx, CollectionMastery, out); err != nil {
		return fmt.Errorf("update mastery: %w", err)
	}
	return nil
}

// GetMastery retrieves one mastery row, or ErrNotFound if the user has never
// answered in that (category, subcategory).
func (r *Repo) GetMastery(ctx context.Context, userID, categoryID, subcategory string) (*models.MasteryScore, error) {
	rec, err := r.store.GetOneByIndex(ctx, CollectionMastery, "user_cat_sub", userID, categoryID, subcategory)
	if err != nil {
		return nil, err
	}
	var m models.MasteryScore
	if err := fromRecord(rec, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMastery returns all mastery rows for a user.
func (r *Repo) ListMastery(ctx context.Context, userID string) ([]models.MasteryScore, error) {
	recs, err := r.store.GetByIndex(ctx, CollectionMastery, "user", userID)
	if err != nil {
		return nil, err
	}
	scores := make([]models.MasteryScore, 0, len(recs))
	for _, rec := range recs {
		var m models.MasteryScore
		if err := fromRecord(rec, &m); err != nil {
			return nil, err
		}
		scores = append(scores, m)
	}
	return scores, nil
}
