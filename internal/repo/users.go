package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asteroid-belt/recall/internal/errs"
	"github.com/asteroid-belt/recall/internal/models"
	"github.com/asteroid-belt/recall/internal/store"
)

// CreateUser stores a new user. Email must be unique across the store.
func (r *Repo) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	_, err := r.store.GetOneByIndex(ctx, CollectionUsers, "email", u.Email)
	if err == nil {
		return nil, fmt.Errorf("email %s: %w", u.Email, errs.ErrKeyExists)
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	rec, err := toRecord(&u)
	if err != nil {
		return nil, err
	}
	id, err := r.store.Add(ctx, CollectionUsers, rec)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	return &u, nil
}

// GetUser retrieves a user by ID.
func (r *Repo) GetUser(ctx context.Context, id string) (*models.User, error) {
	rec, err := r.store.Get(ctx, CollectionUsers, id)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := fromRecord(rec, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail retrieves a user by their unique email.
func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	rec, err := r.store.GetOneByIndex(ctx, CollectionUsers, "email", email)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := fromRecord(rec, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns the users of the session's tenant (all tenants for an
// administrative session).
func (r *Repo) ListUsers(ctx context.Context, sess Session) ([]models.User, error) {
	var (
		recs []store.Record
		err  error
	)
	if sess.IsAdmin() {
		recs, err = r.store.GetAll(ctx, CollectionUsers)
	} else {
		recs, err = r.store.GetByIndex(ctx, CollectionUsers, "tenant", sess.TenantID)
	}
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(recs))
	for _, rec := range recs {
		var u models.User
		if err := fromRecord(rec, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// UpdateUserRole changes a user's role.
func (r *Repo) UpdateUserRole(ctx context.Context, sess Session, userID string, role models.Role) error {
	u, err := r.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := checkTenant(sess, u.TenantID); err != nil {
		return err
	}
	u.Role = role
	if err := u.Validate(); err != nil {
		return err
	}
	return r.putUser(ctx, u)
}

// CreditTokens adds tokens to a user's balance.
func (r *Repo) CreditTokens(ctx context.Context, userID string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must be non-negative, got %d", amount)
	}
	u, err := r.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	u.TokenBalance += amount
	return r.putUser(ctx, u)
}

// DebitTokens removes tokens from a user's balance, failing with
// ErrInsufficientBalance when the balance would go negative. It is the
// forward half of the purchase saga's debit step; callers must not retry it
// automatically on failure.
func (r *Repo) DebitTokens(ctx context.Context, userID string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("debit amount must be non-negative, got %d", amount)
	}
	u, err := r.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if u.TokenBalance < amount {
		return fmt.Errorf("balance %d, need %d: %w", u.TokenBalance, amount, errs.ErrInsufficientBalance)
	}
	u.TokenBalance -= amount
	return r.putUser(ctx, u)
}

func (r *Repo) putUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	rec, err := toRecord(u)
	if err != nil {
		return err
	}
	if _, err := r.store.Put(ctx, CollectionUsers, rec); err != nil {
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	return nil
}
