// Package repo is the domain repository: it translates domain operations
// into keyed-store calls while preserving the invariants that span multiple
// collections (tenant isolation, frozen question sets, token transactions,
// rolling mastery aggregates).
package repo

import (
	"encoding/json"
	"fmt"

	"github.com/asteroid-belt/recall/internal/errs"
	"github.com/asteroid-belt/recall/internal/models"
	"github.com/asteroid-belt/recall/internal/store"
)

// Collection names. The store engine sees only these; entity shapes live in
// the models package.
const (
	CollectionTenants    = "tenants"
	CollectionUsers      = "users"
	CollectionCategories = "categories"
	CollectionQuestions  = "questions"
	CollectionQuizzes    = "quizzes"
	CollectionMastery    = "mastery_scores"
	CollectionItems      = "marketplace_items"
	CollectionPurchases  = "purchases"
	CollectionBadges     = "badges"
	CollectionUserBadges = "user_badges"
	CollectionTimers     = "study_timers"
	CollectionSyncState  = "sync_state"
)

// Session is the explicit actor context passed into every repository call.
// There is no implicit global current user.
type Session struct {
	UserID   string
	TenantID string
	Role     models.Role
}

// IsAdmin reports whether the session may cross tenant boundaries.
func (s Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// Repo exposes the domain operations over a keyed store.
type Repo struct {
	store *store.Store
}

// New constructs a repository over an open store.
func New(s *store.Store) *Repo {
	return &Repo{store: s}
}

// Store exposes the underlying engine for export/import and the sync driver.
func (r *Repo) Store() *store.Store {
	return r.store
}

// Schema returns the domain schema descriptor: every collection, its key
// shape and its secondary indexes. The store checks it against the on-disk
// layout at open time; upgrades must stay additive.
func Schema() store.Schema {
	return store.Schema{
		Version: 1,
		Collections: []store.Collection{
			{Name: CollectionTenants, KeyPath: "id", AutoKey: true},
			{Name: CollectionUsers, KeyPath: "id", AutoKey: true, Indexes: []store.Index{
				{Name: "email", Fields: []string{"email"}, Unique: true},
				{Name: "tenant", Fields: []string{"tenantId"}},
			}},
			{Name: CollectionCategories, KeyPath: "id", AutoKey: true, Indexes: []store.Index{
				{Name: "tenant", Fields: []string{"tenantId"}},
			}},
			{Name: CollectionQuestions, KeyPath: "id", AutoKey: true, Indexes: []store.Index{
				{Name: "category", Fields: []string{"categoryId"}},
				{Name: "category_sub", Fields: []string{"categoryId", "subcategory"}},
				{Name: "tenant", Fields: []string{"tenantId"}},
			}},
			{Name: CollectionQuizzes, KeyPath: "id", AutoKey: true, Indexes: []store.Index{
				{Name: "user", Fields: []string{"userId"}},
				{Name: "tenant", Fields: []string{"tenantId"}},
			}},
			{Name: CollectionMastery, KeyPath: "id", AutoKey: true, Indexes: []store.Index{
				{Name: "user", Fields: []string{"userId"}},
				{Name: "user_cat_sub", Fields: []string{"userId", "categoryId", "subcategory"}},
			}},
			{Name: CollectionItems, KeyPath: "id", AutoKey: true, Indexes: []store.Index{
				{Name: "tenant", Fields: []string{"tenantId"}},
			}},
			{Name: CollectionPurchases, KeyPath: "id", AutoKey: true, Indexes: []store.Index{
				{Name: "user", Fields: []string{"userId"}},
				{Name: "user_item", Fields: []string{"userId", "itemId"}, Unique: true},
			}},
			{Name: CollectionBadges, KeyPath: "id", AutoKey: true},
			{Name: CollectionUserBadges, KeyPath: "id", AutoKey: true, Indexes: []store.Index{
				{Name: "user", Fields: []string{"userId"}},
				{Name: "user_badge", Fields: []string{"userId", "badgeId"}, Unique: true},
			}},
			{Name: CollectionTimers, KeyPath: "id", AutoKey: true, Indexes: []store.Index{
				{Name: "user", Fields: []string{"userId"}},
			}},
			{Name: CollectionSyncState, KeyPath: "id"},
		},
	}
}

// toRecord converts a typed entity to its stored document form.
func toRecord(v any) (store.Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	var rec store.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	return rec, nil
}

// fromRecord converts a stored document back into a typed entity.
func fromRecord(rec store.Record, out any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("decode entity: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode entity: %w", err)
	}
	return nil
}

// checkTenant enforces tenant isolation: a non-admin session may only touch
// records of its own tenant.
func checkTenant(sess Session, tenantID string) error {
	if sess.IsAdmin() {
		return nil
	}
	if sess.TenantID != tenantID {
		return fmt.Errorf("session tenant %q vs record tenant %q: %w",
			sess.TenantID, tenantID, errs.ErrTenantMismatch)
	}
	return nil
}
