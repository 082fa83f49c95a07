// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across store/repo/sync layers.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrKeyExists indicates an insert collided with an existing primary key
	// or unique index (distinct from a broken store).
	ErrKeyExists = errors.New("key already exists")

	// ErrStoreClosed indicates the local store is not open.
	ErrStoreClosed = errors.New("store closed")

	// ErrInvalidState indicates an operation that the record's lifecycle does
	// not permit (e.g. submitting a quiz twice).
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientBalance indicates a token debit that would drop the
	// balance below zero.
	ErrInsufficientBalance = errors.New("insufficient token balance")

	// ErrAlreadyPurchased indicates a duplicate (user, item) purchase.
	ErrAlreadyPurchased = errors.New("already purchased")

	// ErrVersionConflict indicates optimistic concurrency failure (expected
	// version no longer current).
	ErrVersionConflict = errors.New("version conflict")

	// ErrManualIntervention indicates a partially applied multi-step
	// transaction whose rollback also failed. Automated retry cannot repair
	// this; callers must route it to manual handling.
	ErrManualIntervention = errors.New("requires manual intervention")

	// ErrTenantMismatch indicates a read or write that would cross a tenant
	// boundary without administrative rights.
	ErrTenantMismatch = errors.New("tenant mismatch")
)
