package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/asteroid-belt/recall/internal/models"
)

// CreateTenant stores a new tenant and returns it with its generated ID.
func (r *Repo) CreateTenant(ctx context.Context, t models.Tenant) (*models.Tenant, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	rec, err := toRecord(&t)
	if err != nil {
		return nil, err
	}
	id, err := r.store.Add(ctx, CollectionTenants, rec)
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	t.ID = id
	return &t, nil
}

// GetTenant retrieves a tenant by ID.
func (r *Repo) GetTenant(ctx context.Context, id string) (*models.Tenant, error) {
	rec, err := r.store.Get(ctx, CollectionTenants, id)
	if err != nil {
		return nil, err
	}
	var t models.Tenant
	if err := fromRecord(rec, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTenants returns all tenants, optionally only active ones.
func (r *Repo) ListTenants(ctx context.Context, activeOnly bool) ([]models.Tenant, error) {
	recs, err := r.store.GetAll(ctx, CollectionTenants)
	if err != nil {
		return nil, err
	}
	tenants := make([]models.Tenant, 0, len(recs))
	for _, rec := range recs {
		var t models.Tenant
		if err := fromRecord(rec, &t); err != nil {
			return nil, err
		}
		if activeOnly && !t.IsActive {
			continue
		}
		tenants = append(tenants, t)
	}
	return tenants, nil
}

// SetTenantActive flips the tenant's active flag.
func (r *Repo) SetTenantActive(ctx context.Context, id string, active bool) error {
	t, err := r.GetTenant(ctx, id)
	if err != nil {
		return err
	}
	t.IsActive = active
	t.UpdatedAt = time.Now().UTC()
	rec, err := toRecord(t)
	if err != nil {
		return err
	}
	if _, err := r.store.Put(ctx, CollectionTenants, rec); err != nil {
		return fmt.Errorf("update tenant %s: %w", id, err)
	}
	return nil
}
