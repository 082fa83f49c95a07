package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/recall/internal/models"
)

func TestSyncState_DefaultsToNever(t *testing.T) {
	r := testRepo(t)

	st, err := r.GetSyncState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SyncNever, st.Status)
	assert.Nil(t, st.LastSyncAt)
}

func TestSyncState_RoundTrip(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, r.PutSyncState(ctx, models.SyncState{
		Status:            models.SyncCompleted,
		LastSyncAt:        &now,
		SyncedCollections: []string{"users", "quizzes"},
	}))

	st, err := r.GetSyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStateID, st.ID)
	assert.Equal(t, models.SyncCompleted, st.Status)
	require.NotNil(t, st.LastSyncAt)
	assert.True(t, now.Equal(*st.LastSyncAt))
	assert.Equal(t, []string{"users", "quizzes"}, st.SyncedCollections)
}
