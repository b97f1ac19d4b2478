package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data JSONB NOT NULL,
		version BIGINT NOT NULL DEFAULT 1,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, id)
	)
`

// PostgresStore keeps every document as a JSONB row with a version column.
// Transactions read without locks and validate the versions they observed
// with SELECT ... FOR UPDATE at commit time.
type PostgresStore struct {
	db          *sql.DB
	maxAttempts int
	sink        ChangeSink
}

func NewPostgresStore(db *sql.DB, opts Options) *PostgresStore {
	return &PostgresStore{
		db:          db,
		maxAttempts: opts.maxAttempts(),
		sink:        opts.Sink,
	}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, postgresSchema)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, ref Ref) (*Document, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	var raw []byte
	var version int64
	err := s.db.QueryRowContext(ctx, `
		SELECT data, version FROM documents
		WHERE collection = $1 AND id = $2
	`, ref.Collection, ref.ID).Scan(&raw, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", ref.Path(), err)
	}
	data, err := decodeData(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ref.Path(), err)
	}
	return &Document{Ref: ref, Data: data, Version: version}, nil
}

func (s *PostgresStore) Set(ctx context.Context, ref Ref, data map[string]interface{}) error {
	return s.write(ctx, opSet, ref, data)
}

func (s *PostgresStore) Update(ctx context.Context, ref Ref, fields map[string]interface{}) error {
	return s.write(ctx, opUpdate, ref, fields)
}

func (s *PostgresStore) Delete(ctx context.Context, ref Ref) error {
	return s.write(ctx, opDelete, ref, nil)
}

func (s *PostgresStore) write(ctx context.Context, kind opKind, ref Ref, data map[string]interface{}) error {
	var buf writeBuffer
	if err := buf.add(kind, ref, data); err != nil {
		return err
	}
	return s.commit(ctx, nil, buf.ops)
}

// Query matches equality filters with JSONB containment.
func (s *PostgresStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	criteria := make(map[string]interface{}, len(filters))
	for _, f := range filters {
		criteria[f.Field] = f.Value
	}
	payload, err := json.Marshal(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filters: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data, version FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
		ORDER BY id
	`, collection, string(payload))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id string
		var raw []byte
		var version int64
		if err := rows.Scan(&id, &raw, &version); err != nil {
			return nil, err
		}
		data, err := decodeData(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, Document{Ref: Ref{Collection: collection, ID: id}, Data: data, Version: version})
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Batch() Batch {
	return &postgresBatch{store: s}
}

func (s *PostgresStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return retryConflicts(ctx, s.maxAttempts, func() error {
		tx := &postgresTx{ctx: ctx, store: s, reads: make(map[string]readMark)}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if tx.writes.err != nil {
			return tx.writes.err
		}
		return s.commit(ctx, tx.reads, tx.writes.ops)
	})
}

type readMark struct {
	ref     Ref
	version int64
}

func (s *PostgresStore) commit(ctx context.Context, reads map[string]readMark, ops []writeOp) error {
	if len(reads) == 0 && len(ops) == 0 {
		return nil
	}
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	locked := make(map[string]map[string]interface{})
	lock := func(ref Ref) (map[string]interface{}, int64, error) {
		var raw []byte
		var version int64
		err := sqlTx.QueryRowContext(ctx, `
			SELECT data, version FROM documents
			WHERE collection = $1 AND id = $2
			FOR UPDATE
		`, ref.Collection, ref.ID).Scan(&raw, &version)
		if errors.Is(err, sql.ErrNoRows) {
			locked[ref.Path()] = nil
			return nil, 0, nil
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to lock %s: %w", ref.Path(), err)
		}
		data, err := decodeData(raw)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to decode %s: %w", ref.Path(), err)
		}
		locked[ref.Path()] = data
		return data, version, nil
	}

	// Lock in path order so concurrent commits cannot deadlock.
	paths := make([]string, 0, len(reads))
	for path := range reads {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		mark := reads[path]
		// FOR UPDATE locks nothing for a missing row, so two transactions
		// that both saw it absent would both create it. Serialize them on
		// the path; the loser then finds the row and conflicts.
		if mark.version == 0 {
			if _, err := sqlTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, path); err != nil {
				return fmt.Errorf("failed to lock %s: %w", path, err)
			}
		}
		_, version, err := lock(mark.ref)
		if err != nil {
			return err
		}
		if version != mark.version {
			return ErrConflict
		}
	}

	docs, err := stageOps(ops, func(ref Ref) (map[string]interface{}, error) {
		if data, ok := locked[ref.Path()]; ok {
			return data, nil
		}
		data, _, err := lock(ref)
		return data, err
	})
	if err != nil {
		return err
	}

	for _, st := range docs {
		if err := persist(ctx, sqlTx, st); err != nil {
			return err
		}
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	committed = true

	publish(ctx, s.sink, changesFor(docs, time.Now().UTC()))
	return nil
}

func persist(ctx context.Context, sqlTx *sql.Tx, st *staged) error {
	if st.current == nil {
		if st.before == nil {
			return nil
		}
		_, err := sqlTx.ExecContext(ctx, `
			DELETE FROM documents WHERE collection = $1 AND id = $2
		`, st.ref.Collection, st.ref.ID)
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", st.ref.Path(), err)
		}
		return nil
	}
	payload, err := json.Marshal(st.current)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", st.ref.Path(), err)
	}
	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, version)
		VALUES ($1, $2, $3::jsonb, 1)
		ON CONFLICT (collection, id) DO UPDATE
		SET data = EXCLUDED.data, version = documents.version + 1, updated_at = now()
	`, st.ref.Collection, st.ref.ID, string(payload))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", st.ref.Path(), err)
	}
	return nil
}

func decodeData(raw []byte) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return data, nil
}

type postgresTx struct {
	ctx    context.Context
	store  *PostgresStore
	reads  map[string]readMark
	writes writeBuffer
}

func (t *postgresTx) Get(ref Ref) (*Document, error) {
	doc, err := t.store.Get(t.ctx, ref)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, seen := t.reads[ref.Path()]; !seen {
		var version int64
		if doc != nil {
			version = doc.Version
		}
		t.reads[ref.Path()] = readMark{ref: ref, version: version}
	}
	return doc, err
}

func (t *postgresTx) Set(ref Ref, data map[string]interface{}) error {
	return t.writes.add(opSet, ref, data)
}

func (t *postgresTx) Update(ref Ref, fields map[string]interface{}) error {
	return t.writes.add(opUpdate, ref, fields)
}

func (t *postgresTx) Delete(ref Ref) error {
	return t.writes.add(opDelete, ref, nil)
}

type postgresBatch struct {
	writeBuffer
	store *PostgresStore
}

func (b *postgresBatch) Commit(ctx context.Context) error {
	if err := b.check(); err != nil {
		return err
	}
	return b.store.commit(ctx, nil, b.ops)
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Tx    = (*postgresTx)(nil)
	_ Batch = (*postgresBatch)(nil)
)
