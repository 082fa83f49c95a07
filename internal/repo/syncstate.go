package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/asteroid-belt/recall/internal/errs"
	"github.com/asteroid-belt/recall/internal/models"
)

// GetSyncState returns the singleton sync state, defaulting to "never" when
// no cycle has run yet.
func (r *Repo) GetSyncState(ctx context.Context) (*models.SyncState, error) {
	rec, err := r.store.Get(ctx, CollectionSyncState, models.SyncStateID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return &models.SyncState{ID: models.SyncStateID, Status: models.SyncNever}, nil
		}
		return nil, err
	}
	var st models.SyncState
	if err := fromRecord(rec, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// PutSyncState persists the sync state so it survives process restarts.
func (r *Repo) PutSyncState(ctx context.Context, st models.SyncState) error {
	st.ID = models.SyncStateID
	rec, err := toRecord(&st)
	if err != nil {
		return err
	}
	if _, err := r.store.Put(ctx, CollectionSyncState, rec); err != nil {
		return fmt.Errorf("persist sync state: %w", err)
	}
	return nil
}
