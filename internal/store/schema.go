package store

import (
	"fmt"
	"regexp"
)

// Index declares a secondary index over one or more record fields.
// Compound indexes support exact-match lookup on the full field tuple only.
type Index struct {
	Name   string
	Fields []string
	Unique bool
}

// Collection declares a named set of records sharing a primary key shape.
type Collection struct {
	Name    string
	KeyPath string // record field holding the primary key
	AutoKey bool   // generate a UUID when the key field is empty
	Indexes []Index
}

// Schema is the static descriptor for the whole store: every collection and
// its indexes, plus a version number. Upgrades are additive only - a new
// version may introduce collections and indexes but never remove them.
type Schema struct {
	Version     int
	Collections []Collection
}

// identRe restricts collection, field and index names to safe SQL identifiers.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the schema descriptor for structural problems. It is run
// once at open time so later operations can trust the descriptor.
func (s Schema) Validate() error {
	if s.Version < 1 {
		return fmt.Errorf("schema version must be >= 1, got %d", s.Version)
	}
	if len(s.Collections) == 0 {
		return fmt.Errorf("schema declares no collections")
	}
	seen := make(map[string]bool, len(s.Collections))
	for _, c := range s.Collections {
		if !identRe.MatchString(c.Name) {
			return fmt.Errorf("invalid collection name %q", c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate collection %q", c.Name)
		}
		seen[c.Name] = true
		if !identRe.MatchString(c.KeyPath) {
			return fmt.Errorf("collection %s: invalid key path %q", c.Name, c.KeyPath)
		}
		idxSeen := make(map[string]bool, len(c.Indexes))
		for _, idx := range c.Indexes {
			if !identRe.MatchString(idx.Name) {
				return fmt.Errorf("collection %s: invalid index name %q", c.Name, idx.Name)
			}
			if idxSeen[idx.Name] {
				return fmt.Errorf("collection %s: duplicate index %q", c.Name, idx.Name)
			}
			idxSeen[idx.Name] = true
			if len(idx.Fields) == 0 {
				return fmt.Errorf("collection %s: index %q has no fields", c.Name, idx.Name)
			}
			for _, f := range idx.Fields {
				if !identRe.MatchString(f) {
					return fmt.Errorf("collection %s: index %q: invalid field %q", c.Name, idx.Name, f)
				}
			}
		}
	}
	return nil
}

// collection returns the descriptor for name.
func (s Schema) collection(name string) (Collection, error) {
	for _, c := range s.Collections {
		if c.Name == name {
			return c, nil
		}
	}
	return Collection{}, fmt.Errorf("unknown collection %q", name)
}

// index returns the named index of a collection.
func (c Collection) index(name string) (Index, error) {
	for _, idx := range c.Indexes {
		if idx.Name == name {
			return idx, nil
		}
	}
	return Index{}, fmt.Errorf("collection %s: unknown index %q", c.Name, name)
}

// indexedFields returns the deduplicated set of fields any index of the
// collection touches, in declaration order. Each gets its own table column.
func (c Collection) indexedFields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, idx := range c.Indexes {
		for _, f := range idx.Fields {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	return fields
}
