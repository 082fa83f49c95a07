package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asteroid-belt/recall/internal/errs"
	"github.com/asteroid-belt/recall/internal/models"
)

// CreateItem stores a new marketplace item.
func (r *Repo) CreateItem(ctx context.Context, sess Session, item models.MarketplaceItem) (*models.MarketplaceItem, error) {
	if item.TenantID == "" {
		item.TenantID = sess.TenantID
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := checkTenant(sess, item.TenantID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	rec, err := toRecord(&item)
	if err != nil {
		return nil, err
	}
	id, err := r.store.Add(ctx, CollectionItems, rec)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	item.ID = id
	return &item, nil
}

// GetItem retrieves a marketplace item.
func (r *Repo) GetItem(ctx context.Context, id string) (*models.MarketplaceItem, error) {
	rec, err := r.store.Get(ctx, CollectionItems, id)
	if err != nil {
		return nil, err
	}
	var item models.MarketplaceItem
	if err := fromRecord(rec, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListPurchases returns a user's purchases.
func (r *Repo) ListPurchases(ctx context.Context, userID string) ([]models.Purchase, error) {
	recs, err := r.store.GetByIndex(ctx, CollectionPurchases, "user", userID)
	if err != nil {
		return nil, err
	}
	purchases := make([]models.Purchase, 0, len(recs))
	for _, rec := range recs {
		var p models.Purchase
		if err := fromRecord(rec, &p); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, nil
}

// PurchaseItem runs the token transaction as a two-step saga: the purchase
// record is written first, then the balance is debited. The ordering
// deliberately favors "purchase exists, tokens not yet deducted" as the
// recoverable failure state over losing tokens with no artifact. Neither
// step auto-retries.
func (r *Repo) PurchaseItem(ctx context.Context, sess Session, userID, itemID string) (*models.Purchase, error) {
	user, err := r.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := checkTenant(sess, user.TenantID); err != nil {
		return nil, err
	}
	item, err := r.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	_, err = r.store.GetOneByIndex(ctx, CollectionPurchases, "user_item", userID, itemID)
	if err == nil {
		return nil, fmt.Errorf("item %s: %w", itemID, errs.ErrAlreadyPurchased)
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	if user.TokenBalance < item.TokensCost {
		return nil, fmt.Errorf("balance %d, need %d: %w",
			user.TokenBalance, item.TokensCost, errs.ErrInsufficientBalance)
	}

	purchase := &models.Purchase{
		UserID:      userID,
		ItemID:      itemID,
		TokensCost:  item.TokensCost,
		PurchasedAt: time.Now().UTC(),
	}
	if err := runSaga(ctx, r.purchaseSteps(purchase)); err != nil {
		return nil, err
	}
	return purchase, nil
}

// purchaseSteps builds the forward/compensate pairs for one purchase. Split
// out so tests can force individual steps to fail.
func (r *Repo) purchaseSteps(p *models.Purchase) []SagaStep {
	return []SagaStep{
		{
			Name: "record purchase",
			Run: func(ctx context.Context) error {
				rec, err := toRecord(p)
				if err != nil {
					return err
				}
				id, err := r.store.Add(ctx, CollectionPurchases, rec)
				if err != nil {
					return err
				}
				p.ID = id
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return r.store.Delete(ctx, CollectionPurchases, p.ID)
			},
		},
		{
			Name: "debit tokens",
			Run: func(ctx context.Context) error {
				return r.DebitTokens(ctx, p.UserID, p.TokensCost)
			},
		},
	}
}
