// Package merge is the conflict resolution engine: a pure function of
// (local, remote, base, config) with no knowledge of the store. It returns
// resolution decisions; the sync driver applies them.
package merge

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/asteroid-belt/recall/internal/errs"
)

// Strategy selects how a document type's conflicts are resolved.
type Strategy string

const (
	// LastWriteWins takes the full record with the later designated
	// timestamp. A missing timestamp on either side fails open toward the
	// caller's own edit: local wins.
	LastWriteWins Strategy = "last-write-wins"
	// FirstWriteWins keeps the previously committed remote version.
	FirstWriteWins Strategy = "first-write-wins"
	// AutoMerge arbitrates field-by-field inside a configured allow-list.
	AutoMerge Strategy = "auto-merge"
	// Manual always requires user input.
	Manual Strategy = "manual"
	// VersionBased enforces optimistic concurrency: an expected-version
	// mismatch is a conflict error, never a silent overwrite.
	VersionBased Strategy = "version-based"
)

// Document is a record in its JSON shape.
type Document map[string]any

// Conflict is the transient input to resolution. Base is the common ancestor
// when one is available, nil otherwise.
type Conflict struct {
	DocumentType    string
	DocumentID      string
	Local           Document
	Remote          Document
	Base            Document
	ExpectedVersion int64 // version-based only: version the local edit saw
	CurrentVersion  int64 // version-based only: authoritative current version
}

// Resolution is the decision: either a merged document, or a request for
// user input. RequiresUserInput is not a failure.
type Resolution struct {
	Resolved          bool
	Merged            Document
	RequiresUserInput bool
	ConflictingFields []string
}

// Config selects a strategy per document type and the allow-list of safely
// mergeable fields for auto-merge.
type Config struct {
	Strategies      map[string]Strategy
	Default         Strategy
	MergeableFields map[string][]string
	// TimestampField designates the per-record modification timestamp.
	// Defaults to "updatedAt".
	TimestampField string
	// VolatileFields are bookkeeping fields excluded from conflict
	// detection. Defaults cover timestamps, versions and sync tags.
	VolatileFields []string
}

// DefaultConfig returns a config using last-write-wins everywhere with the
// standard volatile-field set.
func DefaultConfig() Config {
	return Config{
		Strategies:      map[string]Strategy{},
		Default:         LastWriteWins,
		MergeableFields: map[string][]string{},
		TimestampField:  "updatedAt",
		VolatileFields:  []string{"updatedAt", "createdAt", "version", "syncedAt", "syncedFromLocal"},
	}
}

// StrategyFor returns the strategy configured for a document type.
func (c Config) StrategyFor(docType string) Strategy {
	if s, ok := c.Strategies[docType]; ok {
		return s
	}
	if c.Default != "" {
		return c.Default
	}
	return LastWriteWins
}

func (c Config) timestampField() string {
	if c.TimestampField != "" {
		return c.TimestampField
	}
	return "updatedAt"
}

func (c Config) volatile() []string {
	if c.VolatileFields != nil {
		return c.VolatileFields
	}
	return []string{"updatedAt", "createdAt", "version", "syncedAt", "syncedFromLocal"}
}

// Resolve computes the outcome of a conflict under the configured strategy.
func Resolve(conflict Conflict, cfg Config) (Resolution, error) {
	switch cfg.StrategyFor(conflict.DocumentType) {
	case FirstWriteWins:
		return Resolution{Resolved: true, Merged: conflict.Remote.clone()}, nil
	case Manual:
		return Resolution{
			RequiresUserInput: true,
			ConflictingFields: changedFields(conflict.Local, conflict.Remote, cfg.volatile()),
		}, nil
	case AutoMerge:
		return autoMerge(conflict, cfg), nil
	case VersionBased:
		if conflict.ExpectedVersion != conflict.CurrentVersion {
			return Resolution{}, fmt.Errorf("%s/%s: expected version %d, current %d: %w",
				conflict.DocumentType, conflict.DocumentID,
				conflict.ExpectedVersion, conflict.CurrentVersion, errs.ErrVersionConflict)
		}
		return Resolution{Resolved: true, Merged: conflict.Local.clone()}, nil
	default: // LastWriteWins
		if localWinsByTimestamp(conflict.Local, conflict.Remote, cfg.timestampField()) {
			return Resolution{Resolved: true, Merged: conflict.Local.clone()}, nil
		}
		return Resolution{Resolved: true, Merged: conflict.Remote.clone()}, nil
	}
}

// autoMerge arbitrates the differing fields. If any of them is outside the
// allow-list the whole conflict goes to the user; nothing is half-resolved.
func autoMerge(conflict Conflict, cfg Config) Resolution {
	diff := changedFields(conflict.Local, conflict.Remote, cfg.volatile())
	if len(diff) == 0 {
		return Resolution{Resolved: true, Merged: conflict.Local.clone()}
	}

	allowed := cfg.MergeableFields[conflict.DocumentType]
	for _, f := range diff {
		if !slices.Contains(allowed, f) {
			return Resolution{RequiresUserInput: true, ConflictingFields: diff}
		}
	}

	merged := conflict.Local.clone()
	tsField := cfg.timestampField()
	for _, f := range diff {
		var winner Document
		switch {
		case conflict.Base != nil:
			lv, rv, bv := conflict.Local[f], conflict.Remote[f], conflict.Base[f]
			localChanged := !deepEqual(lv, bv)
			remoteChanged := !deepEqual(rv, bv)
			switch {
			case remoteChanged && !localChanged:
				winner = conflict.Remote
			case localChanged && !remoteChanged:
				winner = conflict.Local
			default:
				// Both sides touched it; fall back to timestamps.
				winner = timestampWinner(conflict, tsField)
			}
		default:
			// No common ancestor available: degrade to timestamp
			// comparison per field rather than refusing outright.
			winner = timestampWinner(conflict, tsField)
		}

		if v, ok := winner[f]; ok {
			merged[f] = v
		} else {
			delete(merged, f)
		}
	}
	return Resolution{Resolved: true, Merged: merged, ConflictingFields: diff}
}

func timestampWinner(conflict Conflict, tsField string) Document {
	if localWinsByTimestamp(conflict.Local, conflict.Remote, tsField) {
		return conflict.Local
	}
	return conflict.Remote
}

// localWinsByTimestamp implements the shared tie-break: later timestamp wins,
// and a missing timestamp on either side keeps the caller's own edit.
func localWinsByTimestamp(local, remote Document, tsField string) bool {
	lt, lok := documentTime(local, tsField)
	rt, rok := documentTime(remote, tsField)
	if !lok || !rok {
		return true
	}
	return !rt.After(lt)
}

func documentTime(doc Document, field string) (time.Time, bool) {
	if doc == nil {
		return time.Time{}, false
	}
	return asTime(doc[field])
}

// changedFields returns the sorted union of non-volatile fields whose values
// differ between the two versions, including fields present on one side only.
func changedFields(local, remote Document, volatile []string) []string {
	keys := make(map[string]bool, len(local)+len(remote))
	for k := range local {
		keys[k] = true
	}
	for k := range remote {
		keys[k] = true
	}

	var diff []string
	for k := range keys {
		if slices.Contains(volatile, k) {
			continue
		}
		if !deepEqual(local[k], remote[k]) {
			diff = append(diff, k)
		}
	}
	sort.Strings(diff)
	return diff
}

func (d Document) clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
