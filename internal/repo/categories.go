package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/asteroid-belt/recall/internal/models"
)

// CreateCategory stores a new category in the session's tenant.
func (r *Repo) CreateCategory(ctx context.Context, sess Session, c models.Category) (*models.Category, error) {
	if c.TenantID == "" {
		c.TenantID = sess.TenantID
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := checkTenant(sess, c.TenantID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	rec, err := toRecord(&c)
	if err != nil {
		return nil, err
	}
	id, err := r.store.Add(ctx, CollectionCategories, rec)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	c.ID = id
	return &c, nil
}

// GetCategory retrieves a category, enforcing tenant isolation.
func (r *Repo) GetCategory(ctx context.Context, sess Session, id string) (*models.Category, error) {
	rec, err := r.store.Get(ctx, CollectionCategories, id)
	if err != nil {
		return nil, err
	}
	var c models.Category
	if err := fromRecord(rec, &c); err != nil {
		return nil, err
	}
	if err := checkTenant(sess, c.TenantID); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns the categories of the session's tenant. The engine's
// index carries the tenant filter; no cross-tenant row ever leaves this call
// for a non-admin session.
func (r *Repo) ListCategories(ctx context.Context, sess Session) ([]models.Category, error) {
	tenantID := sess.TenantID
	recs, err := r.store.GetByIndex(ctx, CollectionCategories, "tenant", tenantID)
	if err != nil {
		return nil, err
	}
	cats := make([]models.Category, 0, len(recs))
	for _, rec := range recs {
		var c models.Category
		if err := fromRecord(rec, &c); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, nil
}
