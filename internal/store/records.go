package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asteroid-belt/recall/internal/errs"
)

// Get retrieves a single record by primary key.
func (s *Store) Get(ctx context.Context, collection, key string) (Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := s.schema.collection(collection); err != nil {
		return nil, err
	}

	var doc string
	q := fmt.Sprintf(`SELECT doc FROM %q WHERE "key" = ?`, collection)
	row := s.db.WithContext(ctx).Raw(q, key).Row()
	if err := row.Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s/%s: %w", collection, key, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return decodeDoc(doc)
}

// GetAll retrieves every record of a collection.
func (s *Store) GetAll(ctx context.Context, collection string) ([]Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := s.schema.collection(collection); err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT doc FROM %q`, collection)
	return s.queryDocs(ctx, q)
}

// GetByIndex retrieves all records matching an exact index key. Compound
// indexes require one value per indexed field, in declaration order.
func (s *Store) GetByIndex(ctx context.Context, collection, indexName string, values ...any) ([]Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	coll, err := s.schema.collection(collection)
	if err != nil {
		return nil, err
	}
	idx, err := coll.index(indexName)
	if err != nil {
		return nil, err
	}
	if len(values) != len(idx.Fields) {
		return nil, fmt.Errorf("index %s/%s expects %d key values, got %d",
			collection, indexName, len(idx.Fields), len(values))
	}

	conds := make([]string, len(idx.Fields))
	args := make([]any, len(values))
	for i, f := range idx.Fields {
		conds[i] = fmt.Sprintf(`%s = ?`, fieldColumn(f))
		args[i] = indexValue(values[i])
	}
	q := fmt.Sprintf(`SELECT doc FROM %q WHERE %s`, collection, strings.Join(conds, " AND "))
	return s.queryDocs(ctx, q, args...)
}

// GetOneByIndex returns the first record matching an exact index key, or
// ErrNotFound when nothing matches.
func (s *Store) GetOneByIndex(ctx context.Context, collection, indexName string, values ...any) (Record, error) {
	recs, err := s.GetByIndex(ctx, collection, indexName, values...)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s by %s: %w", collection, indexName, errs.ErrNotFound)
	}
	return recs[0], nil
}

// Add inserts a new record and returns its key. Collections declared with
// AutoKey get a generated UUID when the key field is empty. A collision with
// an existing key fails with ErrKeyExists so callers can distinguish
// "already exists" from a broken store.
func (s *Store) Add(ctx context.Context, collection string, rec Record) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	coll, err := s.schema.collection(collection)
	if err != nil {
		return "", err
	}
	key, err := recordKey(coll, rec)
	if err != nil {
		return "", err
	}

	var exists int64
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %q WHERE "key" = ?`, collection)
	if err := s.db.WithContext(ctx).Raw(q, key).Row().Scan(&exists); err != nil {
		return "", fmt.Errorf("add %s: %w", collection, err)
	}
	if exists > 0 {
		return "", fmt.Errorf("add %s/%s: %w", collection, key, errs.ErrKeyExists)
	}
	if err := s.write(ctx, coll, key, rec); err != nil {
		return "", err
	}
	return key, nil
}

// Put upserts a record and returns its key.
func (s *Store) Put(ctx context.Context, collection string, rec Record) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	coll, err := s.schema.collection(collection)
	if err != nil {
		return "", err
	}
	key, err := recordKey(coll, rec)
	if err != nil {
		return "", err
	}
	if err := s.write(ctx, coll, key, rec); err != nil {
		return "", err
	}
	return key, nil
}

// Delete removes a record by primary key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, collection, key string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.schema.collection(collection); err != nil {
		return err
	}
	q := fmt.Sprintf(`DELETE FROM %q WHERE "key" = ?`, collection)
	if err := s.db.WithContext(ctx).Exec(q, key).Error; err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return nil
}

// Clear removes every record of a collection.
func (s *Store) Clear(ctx context.Context, collection string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.schema.collection(collection); err != nil {
		return err
	}
	q := fmt.Sprintf(`DELETE FROM %q`, collection)
	if err := s.db.WithContext(ctx).Exec(q).Error; err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}
	return nil
}

// Count returns the number of records in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if _, err := s.schema.collection(collection); err != nil {
		return 0, err
	}
	var n int64
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %q`, collection)
	if err := s.db.WithContext(ctx).Raw(q).Row().Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// ExportAll returns a snapshot of every collection keyed by collection name.
func (s *Store) ExportAll(ctx context.Context) (map[string][]Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	out := make(map[string][]Record, len(s.schema.Collections))
	for _, c := range s.schema.Collections {
		recs, err := s.GetAll(ctx, c.Name)
		if err != nil {
			return nil, err
		}
		out[c.Name] = recs
	}
	return out, nil
}

// ImportAll replaces store contents with the given snapshot: every collection
// is cleared first, then records are bulk-inserted. The replacement is NOT
// transactional across collections; a failure mid-import leaves a partially
// restored store, which callers must treat as fatal and re-attempt from a
// fresh export.
func (s *Store) ImportAll(ctx context.Context, data map[string][]Record) error {
	if err := s.ready(); err != nil {
		return err
	}
	for name := range data {
		if _, err := s.schema.collection(name); err != nil {
			return err
		}
	}
	for _, c := range s.schema.Collections {
		if err := s.Clear(ctx, c.Name); err != nil {
			return err
		}
	}
	for name, recs := range data {
		for _, rec := range recs {
			if _, err := s.Put(ctx, name, rec); err != nil {
				return fmt.Errorf("import %s: %w", name, err)
			}
		}
	}
	return nil
}

// write upserts the encoded document and its extracted index columns.
func (s *Store) write(ctx context.Context, coll Collection, key string, rec Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", coll.Name, key, err)
	}

	cols := []string{`"key"`, `"doc"`}
	args := []any{key, string(doc)}
	for _, f := range coll.indexedFields() {
		cols = append(cols, fieldColumn(f))
		args = append(args, indexValue(rec[f]))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	q := fmt.Sprintf(`INSERT OR REPLACE INTO %q (%s) VALUES (%s)`,
		coll.Name, strings.Join(cols, ", "), placeholders)
	if err := s.db.WithContext(ctx).Exec(q, args...).Error; err != nil {
		return fmt.Errorf("write %s/%s: %w", coll.Name, key, err)
	}
	return nil
}

func (s *Store) queryDocs(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.db.WithContext(ctx).Raw(q, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec, err := decodeDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func decodeDoc(doc string) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// recordKey extracts (or generates, for AutoKey collections) the primary key.
func recordKey(coll Collection, rec Record) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("%s: nil record", coll.Name)
	}
	if v, ok := rec[coll.KeyPath]; ok {
		if key, ok := v.(string); ok && key != "" {
			return key, nil
		}
	}
	if coll.AutoKey {
		key := uuid.NewString()
		rec[coll.KeyPath] = key
		return key, nil
	}
	return "", fmt.Errorf("%s: record missing key field %q", coll.Name, coll.KeyPath)
}

// indexValue canonicalizes a record field for storage in an index column.
// Index lookups are exact-match only, so a stable string form is enough.
func indexValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(raw)
	}
}
