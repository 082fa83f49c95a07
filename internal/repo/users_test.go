package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/recall/internal/errs"
	"github.com/asteroid-belt/recall/internal/models"
)

func TestCreateUser_DuplicateEmail(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	sess, user := seedWorld(t, r, "Academy")

	_, err := r.CreateUser(ctx, models.User{
		Email:    user.Email,
		TenantID: sess.TenantID,
		Role:     models.RoleStudent,
	})
	assert.ErrorIs(t, err, errs.ErrKeyExists)
}

func TestCreateUser_Invalid(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	sess, _ := seedWorld(t, r, "Academy")

	_, err := r.CreateUser(ctx, models.User{Email: "not-an-email", TenantID: sess.TenantID, Role: models.RoleStudent})
	assert.Error(t, err)

	_, err = r.CreateUser(ctx, models.User{Email: "x@example.com", TenantID: sess.TenantID, Role: "chancellor"})
	assert.Error(t, err)

	_, err = r.CreateUser(ctx, models.User{Email: "x@example.com", TenantID: sess.TenantID, Role: models.RoleStudent, TokenBalance: -5})
	assert.Error(t, err)
}

func TestGetUserByEmail(t *testing.T) {
	r := testRepo(t)
	_, user := seedWorld(t, r, "Academy")

	got, err := r.GetUserByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = r.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestTokenBalance(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	_, user := seedWorld(t, r, "Academy")

	require.NoError(t, r.CreditTokens(ctx, user.ID, 50))
	require.NoError(t, r.DebitTokens(ctx, user.ID, 20))

	got, err := r.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.TokenBalance)

	err = r.DebitTokens(ctx, user.ID, 31)
	assert.ErrorIs(t, err, errs.ErrInsufficientBalance)

	// The failed debit must not touch the balance.
	got, err = r.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.TokenBalance)

	assert.Error(t, r.CreditTokens(ctx, user.ID, -1))
	assert.Error(t, r.DebitTokens(ctx, user.ID, -1))
}

func TestListUsers(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	sessA, _ := seedWorld(t, r, "Academy A")
	_, _ = seedWorld(t, r, "Academy B")

	own, err := r.ListUsers(ctx, sessA)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	admin := Session{TenantID: sessA.TenantID, Role: models.RoleAdmin}
	all, err := r.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateUserRole(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	sess, user := seedWorld(t, r, "Academy")

	require.NoError(t, r.UpdateUserRole(ctx, sess, user.ID, models.RoleEditor))
	got, err := r.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, got.Role)

	sessB, _ := seedWorld(t, r, "Academy B")
	err = r.UpdateUserRole(ctx, sessB, user.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, errs.ErrTenantMismatch)
}
