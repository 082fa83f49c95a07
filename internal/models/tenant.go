// Package models defines the typed domain entities persisted in the local
// store. Entities are validated at the repository boundary; the store engine
// itself only sees their JSON document form.
package models

import (
	"fmt"
	"time"
)

// Tenant is the top-level isolation boundary. Every tenant-scoped entity
// carries a TenantID; reads and writes never cross tenants unless an
// administrative session asks for it explicitly.
type Tenant struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	IsActive  bool              `json:"isActive"`
	Settings  map[string]string `json:"settings,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Validate checks required fields.
func (t *Tenant) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tenant name is required")
	}
	return nil
}
