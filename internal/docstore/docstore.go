// Package docstore is a minimal transactional document store: documents are
// schemaless field maps addressed by collection path and id, and every
// committed write can be published as a before/after change event.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrConflict        = errors.New("transaction conflict")
	ErrTooManyAttempts = errors.New("transaction retry budget exhausted")
	ErrInvalidRef      = errors.New("invalid document reference")
	ErrBatchTooLarge   = errors.New("batch exceeds write limit")
)

const (
	DefaultMaxAttempts = 5
	MaxBatchWrites     = 500
)

// Ref addresses a document. Collection may be a nested path such as
// "reviews/abc/yums".
type Ref struct {
	Collection string
	ID         string
}

func (r Ref) Path() string {
	return r.Collection + "/" + r.ID
}

func (r Ref) String() string {
	return r.Path()
}

func (r Ref) Validate() error {
	if r.Collection == "" || r.ID == "" || strings.Contains(r.ID, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidRef, r.Path())
	}
	if strings.Count(r.Collection, "/")%2 != 0 {
		return fmt.Errorf("%w: collection %q", ErrInvalidRef, r.Collection)
	}
	return nil
}

// ParsePath splits "a/b/c/d" into collection "a/b/c" and id "d".
func ParsePath(path string) (Ref, error) {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, path)
	}
	ref := Ref{Collection: path[:idx], ID: path[idx+1:]}
	return ref, ref.Validate()
}

type Document struct {
	Ref     Ref
	Data    map[string]interface{}
	Version int64
}

// Filter is an equality predicate on a top-level field.
type Filter struct {
	Field string
	Value interface{}
}

func Where(field string, value interface{}) Filter {
	return Filter{Field: field, Value: value}
}

type Store interface {
	Get(ctx context.Context, ref Ref) (*Document, error)
	Set(ctx context.Context, ref Ref, data map[string]interface{}) error
	// Update merges fields into an existing document and fails with
	// ErrNotFound when it does not exist.
	Update(ctx context.Context, ref Ref, fields map[string]interface{}) error
	Delete(ctx context.Context, ref Ref) error
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	Batch() Batch
	// RunTransaction runs fn and commits its buffered writes. When a document
	// read through the Tx changed before commit, fn is run again from scratch,
	// up to the configured attempt budget. Any other error returned by fn
	// aborts the transaction without applying writes.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the handle passed to a transaction function. Writes are invisible to
// everyone else until commit.
type Tx interface {
	Get(ref Ref) (*Document, error)
	Set(ref Ref, data map[string]interface{}) error
	Update(ref Ref, fields map[string]interface{}) error
	Delete(ref Ref) error
}

// Batch groups blind writes that commit together. Batches are never retried.
type Batch interface {
	Set(ref Ref, data map[string]interface{})
	Update(ref Ref, fields map[string]interface{})
	Delete(ref Ref)
	Len() int
	Commit(ctx context.Context) error
}

type ChangeKind int

const (
	ChangeCreated ChangeKind = iota + 1
	ChangeUpdated
	ChangeDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeCreated:
		return "create"
	case ChangeUpdated:
		return "update"
	case ChangeDeleted:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is the per-document notification emitted after a commit. A nil
// Before means the document was created, a nil After that it was deleted.
type Change struct {
	Collection string                 `json:"collection"`
	ID         string                 `json:"id"`
	Before     map[string]interface{} `json:"before"`
	After      map[string]interface{} `json:"after"`
	Timestamp  time.Time              `json:"timestamp"`
}

func (c Change) Ref() Ref {
	return Ref{Collection: c.Collection, ID: c.ID}
}

func (c Change) Kind() ChangeKind {
	switch {
	case c.Before == nil && c.After != nil:
		return ChangeCreated
	case c.Before != nil && c.After == nil:
		return ChangeDeleted
	case c.Before != nil && c.After != nil:
		return ChangeUpdated
	default:
		return 0
	}
}

type ChangeSink interface {
	Publish(ctx context.Context, changes []Change) error
}

// Options configures the memory and Postgres backends.
type Options struct {
	MaxAttempts int
	Sink        ChangeSink
}

func (o Options) maxAttempts() int {
	if o.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return o.MaxAttempts
}

func notFound(ref Ref) error {
	return fmt.Errorf("%s: %w", ref.Path(), ErrNotFound)
}
