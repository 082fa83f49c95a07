package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/recall/internal/errs"
	"github.com/asteroid-belt/recall/internal/models"
	"github.com/asteroid-belt/recall/internal/store"
)

// testRepo opens a repository over a temporary store.
func testRepo(t *testing.T) *Repo {
	t.Helper()
	s, err := store.Open(store.DefaultConfig(filepath.Join(t.TempDir(), "test.db"), Schema()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s)
}

// seedWorld creates a tenant with one student and returns the student's
// session. Emails are derived from the tenant name, which therefore must be
// unique within a test.
func seedWorld(t *testing.T, r *Repo, tenantName string) (Session, *models.User) {
	t.Helper()
	ctx := context.Background()

	tenant, err := r.CreateTenant(ctx, models.Tenant{Name: tenantName, IsActive: true})
	require.NoError(t, err)

	user, err := r.CreateUser(ctx, models.User{
		Email:       fmt.Sprintf("student-%s@example.com", tenant.ID),
		DisplayName: "Student",
		TenantID:    tenant.ID,
		Role:        models.RoleStudent,
	})
	require.NoError(t, err)

	return Session{UserID: user.ID, TenantID: tenant.ID, Role: user.Role}, user
}

// seedQuestions creates a category with n questions whose correct answer is
// always option 0.
func seedQuestions(t *testing.T, r *Repo, sess Session, categoryName string, n int) (*models.Category, []models.Question) {
	t.Helper()
	ctx := context.Background()

	cat, err := r.CreateCategory(ctx, sess, models.Category{
		Name:          categoryName,
		Subcategories: []string{"general"},
	})
	require.NoError(t, err)

	questions := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		q, err := r.CreateQuestion(ctx, sess, models.Question{
			CategoryID:    cat.ID,
			Subcategory:   "general",
			Text:          fmt.Sprintf("question %d", i),
			Options:       []string{"right", "wrong", "also wrong"},
			CorrectAnswer: 0,
			Difficulty:    models.DifficultyBeginner,
		})
		require.NoError(t, err)
		questions = append(questions, *q)
	}
	return cat, questions
}

func TestTenantIsolation_SameCategoryName(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	sessA, _ := seedWorld(t, r, "Academy A")
	sessB, _ := seedWorld(t, r, "Academy B")

	catA, err := r.CreateCategory(ctx, sessA, models.Category{Name: "Security"})
	require.NoError(t, err)
	catB, err := r.CreateCategory(ctx, sessB, models.Category{Name: "Security"})
	require.NoError(t, err)
	require.NotEqual(t, catA.ID, catB.ID)

	// Each tenant sees exactly its own "Security", never the namesake.
	listA, err := r.ListCategories(ctx, sessA)
	require.NoError(t, err)
	require.Len(t, listA, 1)
	assert.Equal(t, catA.ID, listA[0].ID)
	assert.Equal(t, sessA.TenantID, listA[0].TenantID)

	listB, err := r.ListCategories(ctx, sessB)
	require.NoError(t, err)
	require.Len(t, listB, 1)
	assert.Equal(t, catB.ID, listB[0].ID)
}

func TestTenantIsolation_CrossTenantRead(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	sessA, _ := seedWorld(t, r, "Academy A")
	sessB, _ := seedWorld(t, r, "Academy B")

	catA, err := r.CreateCategory(ctx, sessA, models.Category{Name: "Security"})
	require.NoError(t, err)

	_, err = r.GetCategory(ctx, sessB, catA.ID)
	assert.ErrorIs(t, err, errs.ErrTenantMismatch)

	// An administrative session may cross the boundary.
	admin := Session{UserID: sessB.UserID, TenantID: sessB.TenantID, Role: models.RoleAdmin}
	got, err := r.GetCategory(ctx, admin, catA.ID)
	require.NoError(t, err)
	assert.Equal(t, catA.ID, got.ID)
}

func TestTenantIsolation_CrossTenantWrite(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	sessA, _ := seedWorld(t, r, "Academy A")
	sessB, _ := seedWorld(t, r, "Academy B")

	// A session cannot plant records into a foreign tenant.
	_, err := r.CreateCategory(ctx, sessB, models.Category{
		Name:     "Intrusion",
		TenantID: sessA.TenantID,
	})
	assert.ErrorIs(t, err, errs.ErrTenantMismatch)
}

func TestSessionIsAdmin(t *testing.T) {
	assert.False(t, Session{Role: models.RoleStudent}.IsAdmin())
	assert.False(t, Session{Role: models.RoleEditor}.IsAdmin())
	assert.True(t, Session{Role: models.RoleAdmin}.IsAdmin())
}

func TestSchemaIsValid(t *testing.T) {
	require.NoError(t, Schema().Validate())
}
