package syncer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/recall/internal/merge"
	"github.com/asteroid-belt/recall/internal/models"
	"github.com/asteroid-belt/recall/internal/repo"
	"github.com/asteroid-belt/recall/internal/store"
	"github.com/asteroid-belt/recall/pkg/version"
)

// fakeRemote is an in-memory RemoteClient with per-record failure injection.
type fakeRemote struct {
	mu       sync.Mutex
	records  map[string]map[string]any
	profiles map[string]map[string]any
	failPut  map[string]error // keyed "docType/id"
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		records:  make(map[string]map[string]any),
		profiles: make(map[string]map[string]any),
		failPut:  make(map[string]error),
	}
}

func (f *fakeRemote) GetRecord(ctx context.Context, docType, id string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[docType+"/"+id]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (f *fakeRemote) PutRecord(ctx context.Context, docType, id string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failPut[docType+"/"+id]; ok {
		return err
	}
	f.records[docType+"/"+id] = data
	return nil
}

func (f *fakeRemote) GetProfile(ctx context.Context, userID string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[userID], nil
}

func (f *fakeRemote) get(docType, id string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[docType+"/"+id]
}

func testDriver(t *testing.T, remote RemoteClient, cfg merge.Config) (*Driver, *repo.Repo) {
	t.Helper()
	s, err := store.Open(store.DefaultConfig(filepath.Join(t.TempDir(), "test.db"), repo.Schema()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	r := repo.New(s)
	return New(r, remote, cfg), r
}

// seedUser creates a tenant and one student, returning their session.
func seedUser(t *testing.T, r *repo.Repo) (repo.Session, *models.User) {
	t.Helper()
	ctx := context.Background()
	tenant, err := r.CreateTenant(ctx, models.Tenant{Name: "Academy", IsActive: true})
	require.NoError(t, err)
	user, err := r.CreateUser(ctx, models.User{
		Email:    "alice@example.com",
		TenantID: tenant.ID,
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	return repo.Session{UserID: user.ID, TenantID: tenant.ID, Role: user.Role}, user
}

func TestNeedsMigration(t *testing.T) {
	ctx := context.Background()

	t.Run("no remote profile", func(t *testing.T) {
		remote := newFakeRemote()
		d, _ := testDriver(t, remote, merge.DefaultConfig())
		need, err := d.NeedsMigration(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, need)
	})

	t.Run("profile exists, never synced", func(t *testing.T) {
		remote := newFakeRemote()
		remote.profiles["u1"] = map[string]any{"id": "u1"}
		d, _ := testDriver(t, remote, merge.DefaultConfig())
		need, err := d.NeedsMigration(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, need)
	})

	t.Run("profile exists, last cycle completed", func(t *testing.T) {
		remote := newFakeRemote()
		remote.profiles["u1"] = map[string]any{"id": "u1"}
		d, r := testDriver(t, remote, merge.DefaultConfig())
		require.NoError(t, r.PutSyncState(ctx, models.SyncState{Status: models.SyncCompleted}))
		need, err := d.NeedsMigration(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, need)
	})

	t.Run("profile exists, last cycle errored", func(t *testing.T) {
		remote := newFakeRemote()
		remote.profiles["u1"] = map[string]any{"id": "u1"}
		d, r := testDriver(t, remote, merge.DefaultConfig())
		require.NoError(t, r.PutSyncState(ctx, models.SyncState{Status: models.SyncError}))
		need, err := d.NeedsMigration(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, need)
	})
}

func TestNeedsMigration_RemoteVersionGate(t *testing.T) {
	ctx := context.Background()
	old := version.Version
	version.Version = "1.2.0"
	t.Cleanup(func() { version.Version = old })

	t.Run("client too old", func(t *testing.T) {
		remote := newFakeRemote()
		remote.profiles["u1"] = map[string]any{"id": "u1", "minAppVersion": "2.0.0"}
		d, _ := testDriver(t, remote, merge.DefaultConfig())
		_, err := d.NeedsMigration(ctx, "u1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2.0.0")
	})

	t.Run("client satisfies the minimum", func(t *testing.T) {
		remote := newFakeRemote()
		remote.profiles["u1"] = map[string]any{"id": "u1", "minAppVersion": "1.0.0"}
		d, _ := testDriver(t, remote, merge.DefaultConfig())
		need, err := d.NeedsMigration(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, need)
	})

	t.Run("remote advertises no minimum", func(t *testing.T) {
		remote := newFakeRemote()
		remote.profiles["u1"] = map[string]any{"id": "u1"}
		d, _ := testDriver(t, remote, merge.DefaultConfig())
		_, err := d.NeedsMigration(ctx, "u1")
		require.NoError(t, err)
	})
}

func TestMigrate_PushesLocalRecords(t *testing.T) {
	remote := newFakeRemote()
	d, r := testDriver(t, remote, merge.DefaultConfig())
	ctx := context.Background()
	sess, user := seedUser(t, r)

	cat, err := r.CreateCategory(ctx, sess, models.Category{Name: "Security"})
	require.NoError(t, err)

	results, err := d.Migrate(ctx, sess)
	require.NoError(t, err)

	assert.Equal(t, CollectionResult{Total: 1, Synced: 1}, results[repo.CollectionTenants])
	assert.Equal(t, CollectionResult{Total: 1, Synced: 1}, results[repo.CollectionUsers])
	assert.Equal(t, CollectionResult{Total: 1, Synced: 1}, results[repo.CollectionCategories])
	assert.Equal(t, CollectionResult{}, results[repo.CollectionQuizzes])

	pushed := remote.get(repo.CollectionCategories, cat.ID)
	require.NotNil(t, pushed)
	assert.Equal(t, "Security", pushed["name"])
	assert.Equal(t, true, pushed["syncedFromLocal"])
	if _, err := time.Parse(time.RFC3339Nano, pushed["syncedAt"].(string)); err != nil {
		t.Errorf("syncedAt is not RFC 3339: %v", err)
	}
	assert.NotNil(t, remote.get(repo.CollectionUsers, user.ID))

	st, err := r.GetSyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncCompleted, st.Status)
	require.NotNil(t, st.LastSyncAt)
	assert.NotEmpty(t, st.SyncedCollections)
	assert.Empty(t, st.ErrorMessage)
}

func TestMigrate_ContinuesPastRecordErrors(t *testing.T) {
	remote := newFakeRemote()
	d, r := testDriver(t, remote, merge.DefaultConfig())
	ctx := context.Background()
	sess, _ := seedUser(t, r)

	catA, err := r.CreateCategory(ctx, sess, models.Category{Name: "Security"})
	require.NoError(t, err)
	catB, err := r.CreateCategory(ctx, sess, models.Category{Name: "Networking"})
	require.NoError(t, err)
	remote.failPut[repo.CollectionCategories+"/"+catA.ID] = errors.New("remote rejected write")

	results, err := d.Migrate(ctx, sess)
	require.NoError(t, err, "record failures are counted, not returned")

	res := results[repo.CollectionCategories]
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Synced)
	assert.Equal(t, 1, res.Errors)
	assert.NotNil(t, remote.get(repo.CollectionCategories, catB.ID),
		"the failing record must not block the rest of its collection")

	st, err := r.GetSyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncError, st.Status)
	assert.Contains(t, st.ErrorMessage, "1 records failed")
	assert.Contains(t, st.ErrorMessage, "remote rejected write")
}

func TestMigrate_MergesDivergentRemote(t *testing.T) {
	remote := newFakeRemote()
	d, r := testDriver(t, remote, merge.DefaultConfig())
	ctx := context.Background()
	sess, _ := seedUser(t, r)

	cat, err := r.CreateCategory(ctx, sess, models.Category{Name: "Security"})
	require.NoError(t, err)

	// Remote copy is older; last-write-wins keeps the local name.
	remote.records[repo.CollectionCategories+"/"+cat.ID] = map[string]any{
		"id":        cat.ID,
		"tenantId":  cat.TenantID,
		"name":      "Sekurity",
		"updatedAt": "2000-01-01T00:00:00Z",
	}

	results, err := d.Migrate(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 1, results[repo.CollectionCategories].Synced)

	pushed := remote.get(repo.CollectionCategories, cat.ID)
	require.NotNil(t, pushed)
	assert.Equal(t, "Security", pushed["name"])

	local, err := r.GetCategory(ctx, sess, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Security", local.Name)
}

func TestMigrate_SkipsUnresolvableConflicts(t *testing.T) {
	remote := newFakeRemote()
	cfg := merge.DefaultConfig()
	cfg.Strategies = map[string]merge.Strategy{repo.CollectionCategories: merge.Manual}
	d, r := testDriver(t, remote, cfg)
	ctx := context.Background()
	sess, _ := seedUser(t, r)

	cat, err := r.CreateCategory(ctx, sess, models.Category{Name: "Security"})
	require.NoError(t, err)
	remoteDoc := map[string]any{
		"id":       cat.ID,
		"tenantId": cat.TenantID,
		"name":     "Sekurity",
	}
	remote.records[repo.CollectionCategories+"/"+cat.ID] = remoteDoc

	results, err := d.Migrate(ctx, sess)
	require.NoError(t, err)

	res := results[repo.CollectionCategories]
	assert.Equal(t, 1, res.Skipped, "a conflict needing user input is skipped, not failed")
	assert.Equal(t, 0, res.Errors)

	// Both replicas stay untouched.
	assert.Equal(t, "Sekurity", remote.get(repo.CollectionCategories, cat.ID)["name"])
	local, err := r.GetCategory(ctx, sess, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Security", local.Name)

	st, err := r.GetSyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncCompleted, st.Status, "skips do not fail the cycle")
}

func TestMigrate_Rerunnable(t *testing.T) {
	remote := newFakeRemote()
	d, r := testDriver(t, remote, merge.DefaultConfig())
	ctx := context.Background()
	sess, _ := seedUser(t, r)

	catA, err := r.CreateCategory(ctx, sess, models.Category{Name: "Security"})
	require.NoError(t, err)
	remote.failPut[repo.CollectionCategories+"/"+catA.ID] = errors.New("transient outage")

	_, err = d.Migrate(ctx, sess)
	require.NoError(t, err)
	st, err := r.GetSyncState(ctx)
	require.NoError(t, err)
	require.Equal(t, models.SyncError, st.Status)

	// The outage clears; a rerun converges.
	delete(remote.failPut, repo.CollectionCategories+"/"+catA.ID)
	results, err := d.Migrate(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 1, results[repo.CollectionCategories].Synced)

	st, err = r.GetSyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncCompleted, st.Status)
}

func TestMigrate_ManyRecords(t *testing.T) {
	remote := newFakeRemote()
	d, r := testDriver(t, remote, merge.DefaultConfig())
	ctx := context.Background()
	sess, _ := seedUser(t, r)

	for i := 0; i < 25; i++ {
		_, err := r.CreateCategory(ctx, sess, models.Category{Name: fmt.Sprintf("Category %d", i)})
		require.NoError(t, err)
	}

	results, err := d.Migrate(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, CollectionResult{Total: 25, Synced: 25}, results[repo.CollectionCategories])
}
