// Package syncer orchestrates one-time and incremental transfer of local
// records to the remote authoritative replica, resolving divergence through
// the merge engine and persisting resumable sync metadata.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/asteroid-belt/recall/internal/merge"
	"github.com/asteroid-belt/recall/internal/models"
	"github.com/asteroid-belt/recall/internal/repo"
	"github.com/asteroid-belt/recall/internal/store"
	"github.com/asteroid-belt/recall/pkg/version"
)

// RemoteClient is the boundary with the remote replica. The driver treats it
// as a black box; no wire protocol is assumed. GetRecord and GetProfile
// return (nil, nil) when the remote has no such record.
type RemoteClient interface {
	GetRecord(ctx context.Context, docType, id string) (map[string]any, error)
	PutRecord(ctx context.Context, docType, id string, data map[string]any) error
	GetProfile(ctx context.Context, userID string) (map[string]any, error)
}

// CollectionResult counts one collection's outcome in a sync cycle.
type CollectionResult struct {
	Total   int
	Synced  int
	Skipped int // resolutions requiring user input; not errors
	Errors  int
}

// syncedCollections lists every collection the driver pushes, in order.
// The engine-internal sync_state collection never leaves the local replica.
var syncedCollections = []string{
	repo.CollectionTenants,
	repo.CollectionUsers,
	repo.CollectionCategories,
	repo.CollectionQuestions,
	repo.CollectionQuizzes,
	repo.CollectionMastery,
	repo.CollectionItems,
	repo.CollectionPurchases,
	repo.CollectionBadges,
	repo.CollectionUserBadges,
	repo.CollectionTimers,
}

// Driver runs sync cycles: never -> in-progress -> completed | error.
type Driver struct {
	repo   *repo.Repo
	remote RemoteClient
	cfg    merge.Config
	now    func() time.Time
}

// New constructs a sync driver. A zero-valued merge config falls back to
// last-write-wins for every document type.
func New(r *repo.Repo, remote RemoteClient, cfg merge.Config) *Driver {
	return &Driver{repo: r, remote: remote, cfg: cfg, now: time.Now}
}

// NeedsMigration reports whether a sync cycle should run for the user: true
// when the remote has no profile yet, or when the last recorded cycle never
// ran or ended in error. A profile advertising a minimum client version the
// running build does not satisfy is an error, not a skip.
func (d *Driver) NeedsMigration(ctx context.Context, userID string) (bool, error) {
	profile, err := d.remote.GetProfile(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("fetch remote profile: %w", err)
	}
	if profile == nil {
		return true, nil
	}
	if err := checkRemoteCompat(profile); err != nil {
		return false, err
	}
	st, err := d.repo.GetSyncState(ctx)
	if err != nil {
		return false, err
	}
	return st.Status == models.SyncNever || st.Status == models.SyncError, nil
}

// checkRemoteCompat enforces the remote's minimum supported client version,
// advertised as minAppVersion on the profile. Dev builds pass unconditionally
// since they carry no comparable version.
func checkRemoteCompat(profile map[string]any) error {
	min, _ := profile["minAppVersion"].(string)
	if min == "" {
		return nil
	}
	if !version.AtLeast(min) {
		return fmt.Errorf("remote requires client %s or newer, running %s", min, version.Version)
	}
	return nil
}

// Migrate walks every syncable collection and pushes each local record to the
// remote replica, tagged syncedFromLocal with a sync timestamp. A single
// record's failure never aborts the run; failures are counted per collection.
// Records that diverge from an existing remote copy go through the merge
// engine, and the resolution is written back to both replicas. The final
// status is completed only when the aggregate error count is zero.
func (d *Driver) Migrate(ctx context.Context, sess repo.Session) (map[string]CollectionResult, error) {
	startedAt := d.now().UTC()
	if err := d.repo.PutSyncState(ctx, models.SyncState{Status: models.SyncInProgress}); err != nil {
		return nil, err
	}

	results := make(map[string]CollectionResult, len(syncedCollections))
	totalErrors := 0
	var firstErr error

	for _, collection := range syncedCollections {
		res := d.syncCollection(ctx, collection, startedAt, &firstErr)
		results[collection] = res
		totalErrors += res.Errors
	}

	st := models.SyncState{
		LastSyncAt:        &startedAt,
		Status:            models.SyncCompleted,
		SyncedCollections: syncedCollections,
	}
	if totalErrors > 0 {
		st.Status = models.SyncError
		st.ErrorMessage = fmt.Sprintf("%d records failed to sync (first: %v)", totalErrors, firstErr)
	}
	if err := d.repo.PutSyncState(ctx, st); err != nil {
		return results, err
	}
	return results, nil
}

func (d *Driver) syncCollection(ctx context.Context, collection string, syncedAt time.Time, firstErr *error) CollectionResult {
	var res CollectionResult

	recs, err := d.repo.Store().GetAll(ctx, collection)
	if err != nil {
		res.Errors++
		if *firstErr == nil {
			*firstErr = err
		}
		return res
	}
	res.Total = len(recs)

	for _, rec := range recs {
		id, _ := rec["id"].(string)
		if id == "" {
			res.Errors++
			if *firstErr == nil {
				*firstErr = fmt.Errorf("%s: record without id", collection)
			}
			continue
		}
		outcome, err := d.syncRecord(ctx, collection, id, rec, syncedAt)
		if err != nil {
			res.Errors++
			if *firstErr == nil {
				*firstErr = fmt.Errorf("%s/%s: %w", collection, id, err)
			}
			continue
		}
		if outcome {
			res.Synced++
		} else {
			res.Skipped++
		}
	}
	return res
}

// syncRecord pushes one record, reconciling with any divergent remote copy.
// It returns false when resolution needs user input and the record was left
// untouched on both replicas.
func (d *Driver) syncRecord(ctx context.Context, collection, id string, local store.Record, syncedAt time.Time) (bool, error) {
	remote, err := d.remote.GetRecord(ctx, collection, id)
	if err != nil {
		return false, err
	}
	if remote == nil {
		return true, d.push(ctx, collection, id, local, syncedAt)
	}

	resolution, err := merge.Resolve(merge.Conflict{
		DocumentType: collection,
		DocumentID:   id,
		Local:        merge.Document(local),
		Remote:       merge.Document(remote),
	}, d.cfg)
	if err != nil {
		return false, err
	}
	if resolution.RequiresUserInput {
		return false, nil
	}

	merged := store.Record(resolution.Merged)
	if _, err := d.repo.Store().Put(ctx, collection, merged); err != nil {
		return false, err
	}
	return true, d.push(ctx, collection, id, merged, syncedAt)
}

// push writes one record to the remote, tagged as a local-origin sync write.
// Per-record writes are idempotent: the tag and timestamp key the write, so
// re-running a cycle after an interruption is safe.
func (d *Driver) push(ctx context.Context, collection, id string, rec store.Record, syncedAt time.Time) error {
	out := make(map[string]any, len(rec)+2)
	for k, v := range rec {
		out[k] = v
	}
	out["syncedFromLocal"] = true
	out["syncedAt"] = syncedAt.Format(time.RFC3339Nano)
	return d.remote.PutRecord(ctx, collection, id, out)
}
