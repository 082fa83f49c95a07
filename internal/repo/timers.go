package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/asteroid-belt/recall/internal/errs"
	"github.com/asteroid-belt/recall/internal/models"
)

// StartTimer opens a new study session for the session's user.
func (r *Repo) StartTimer(ctx context.Context, sess Session) (*models.StudyTimer, error) {
	t := models.StudyTimer{
		UserID:    sess.UserID,
		TenantID:  sess.TenantID,
		StartedAt: time.Now().UTC(),
	}
	rec, err := toRecord(&t)
	if err != nil {
		return nil, err
	}
	id, err := r.store.Add(ctx, CollectionTimers, rec)
	if err != nil {
		return nil, fmt.Errorf("start timer: %w", err)
	}
	t.ID = id
	return &t, nil
}

// StopTimer closes a running study session and records its duration.
func (r *Repo) StopTimer(ctx context.Context, sess Session, timerID string) (*models.StudyTimer, error) {
	rec, err := r.store.Get(ctx, CollectionTimers, timerID)
	if err != nil {
		return nil, err
	}
	var t models.StudyTimer
	if err := fromRecord(rec, &t); err != nil {
		return nil, err
	}
	if err := checkTenant(sess, t.TenantID); err != nil {
		return nil, err
	}
	if !t.IsRunning() {
		return nil, fmt.Errorf("timer %s already stopped: %w", timerID, errs.ErrInvalidState)
	}

	now := time.Now().UTC()
	t.StoppedAt = &now
	t.DurationSeconds = int(now.Sub(t.StartedAt).Seconds())
	out, err := toRecord(&t)
	if err != nil {
		return nil, err
	}
	if _, err := r.store.Put(ctx, CollectionTimers, out); err != nil {
		return nil, fmt.Errorf("stop timer %s: %w", timerID, err)
	}
	return &t, nil
}

// ListTimers returns a user's study sessions.
func (r *Repo) ListTimers(ctx context.Context, userID string) ([]models.StudyTimer, error) {
	recs, err := r.store.GetByIndex(ctx, CollectionTimers, "user", userID)
	if err != nil {
		return nil, err
	}
	timers := make([]models.StudyTimer, 0, len(recs))
	for _, rec := range recs {
		var t models.StudyTimer
		if err := fromRecord(rec, &t); err != nil {
			return nil, err
		}
		timers = append(timers, t)
	}
	return timers, nil
}
