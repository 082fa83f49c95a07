package models

import (
	"fmt"
	"time"
)

// MarketplaceItem is a purchasable study material.
type MarketplaceItem struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	Title      string    `json:"title"`
	TokensCost int       `json:"tokensCost"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Validate checks required fields.
func (m *MarketplaceItem) Validate() error {
	if m.TenantID == "" {
		return fmt.Errorf("item requires a tenant")
	}
	if m.Title == "" {
		return fmt.Errorf("item title is required")
	}
	if m.TokensCost < 0 {
		return fmt.Errorf("item cost must be non-negative, got %d", m.TokensCost)
	}
	return nil
}

// Purchase records a completed token debit for one (user, item) pair.
// It is created only as the first step of the purchase saga; a purchase
// without a matching debit is the recoverable failure state.
type Purchase struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ItemID      string    `json:"itemId"`
	TokensCost  int       `json:"tokensCost"`
	PurchasedAt time.Time `json:"purchasedAt"`
}
