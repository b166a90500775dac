// Package store is a small document store over named tables. Each record is a
// JSON document addressed by (table, key). Backends: PostgreSQL, SQLite and an
// in-memory map.
//
// Scan and Query return a single page of at most the configured page size.
// There is no continuation token; when a page comes back full the backend logs
// a warning because later records were not read.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultPageSize bounds a single Scan or Query call.
const DefaultPageSize = 1000

var ErrNotFound = errors.New("record not found")

// Document is a raw JSON record as stored.
type Document = json.RawMessage

type FilterOp int

const (
	OpExists FilterOp = iota
	OpNotExists
	OpEquals
)

// Filter restricts a Scan on a top-level document field.
type Filter struct {
	Field string
	Op    FilterOp
	Value string
}

func Exists(field string) Filter    { return Filter{Field: field, Op: OpExists} }
func NotExists(field string) Filter { return Filter{Field: field, Op: OpNotExists} }
func Equals(field, value string) Filter {
	return Filter{Field: field, Op: OpEquals, Value: value}
}

// Index names a secondary access path: records whose PartitionKey field equals
// a value, ordered by SortKey.
type Index struct {
	Name         string
	PartitionKey string
	SortKey      string
}

// PatientCreatedAt is the index used by notes and interventions.
var PatientCreatedAt = Index{Name: "patientId-createdAt-index", PartitionKey: "patientId", SortKey: "createdAt"}

type Store interface {
	// Get decodes the record into out or returns ErrNotFound.
	Get(ctx context.Context, table, key string, out any) error
	// Put inserts or replaces the record.
	Put(ctx context.Context, table, key string, item any) error
	// Update merges fields into an existing record and returns the result.
	Update(ctx context.Context, table, key string, fields map[string]any) (Document, error)
	// Delete removes the record. Deleting a missing key is not an error.
	Delete(ctx context.Context, table, key string) error
	Scan(ctx context.Context, table string, filters ...Filter) ([]Document, error)
	Query(ctx context.Context, table string, idx Index, value string, descending bool) ([]Document, error)
	Close() error
}

// DecodeAll unmarshals every document into T.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d, &v); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Decode unmarshals a single document into T.
func Decode[T any](doc Document) (T, error) {
	var v T
	if err := json.Unmarshal(doc, &v); err != nil {
		return v, fmt.Errorf("decode record: %w", err)
	}
	return v, nil
}
