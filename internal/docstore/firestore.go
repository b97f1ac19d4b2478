package docstore

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore adapts a Firestore client. Change events are produced by
// the platform's own document triggers, so no sink is attached here.
type FirestoreStore struct {
	client      *firestore.Client
	maxAttempts int
}

func NewFirestoreStore(client *firestore.Client, opts Options) *FirestoreStore {
	return &FirestoreStore{client: client, maxAttempts: opts.maxAttempts()}
}

func (s *FirestoreStore) doc(ref Ref) *firestore.DocumentRef {
	return s.client.Collection(ref.Collection).Doc(ref.ID)
}

func (s *FirestoreStore) Get(ctx context.Context, ref Ref) (*Document, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	snap, err := s.doc(ref).Get(ctx)
	return snapshotDocument(ref, snap, err)
}

func (s *FirestoreStore) Set(ctx context.Context, ref Ref, data map[string]interface{}) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	_, err := s.doc(ref).Set(ctx, data)
	return err
}

func (s *FirestoreStore) Update(ctx context.Context, ref Ref, fields map[string]interface{}) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	_, err := s.doc(ref).Update(ctx, firestoreUpdates(fields))
	if status.Code(err) == codes.NotFound {
		return notFound(ref)
	}
	return err
}

func (s *FirestoreStore) Delete(ctx context.Context, ref Ref) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	_, err := s.doc(ref).Delete(ctx)
	return err
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	query := s.client.Collection(collection).Query
	for _, f := range filters {
		query = query.Where(f.Field, "==", f.Value)
	}
	iter := query.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
		}
		docs = append(docs, Document{
			Ref:     Ref{Collection: collection, ID: snap.Ref.ID},
			Data:    snap.Data(),
			Version: snap.UpdateTime.UnixNano(),
		})
	}
	sortDocuments(docs)
	return docs, nil
}

func (s *FirestoreStore) Batch() Batch {
	return &firestoreBatch{store: s}
}

// RunTransaction delegates retries to the client, which re-runs fn when the
// commit is aborted by contention.
func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &firestoreTx{store: s, tx: tx})
	}, firestore.MaxAttempts(s.maxAttempts))
	if status.Code(err) == codes.Aborted {
		return fmt.Errorf("%w after %d attempts: %w", ErrTooManyAttempts, s.maxAttempts, err)
	}
	return err
}

type firestoreTx struct {
	store *FirestoreStore
	tx    *firestore.Transaction
}

func (t *firestoreTx) Get(ref Ref) (*Document, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	snap, err := t.tx.Get(t.store.doc(ref))
	return snapshotDocument(ref, snap, err)
}

func (t *firestoreTx) Set(ref Ref, data map[string]interface{}) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	return t.tx.Set(t.store.doc(ref), data)
}

func (t *firestoreTx) Update(ref Ref, fields map[string]interface{}) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	return t.tx.Update(t.store.doc(ref), firestoreUpdates(fields))
}

func (t *firestoreTx) Delete(ref Ref) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	return t.tx.Delete(t.store.doc(ref))
}

type firestoreBatch struct {
	writeBuffer
	store *FirestoreStore
}

func (b *firestoreBatch) Commit(ctx context.Context) error {
	if err := b.check(); err != nil {
		return err
	}
	if len(b.ops) == 0 {
		return nil
	}
	wb := b.store.client.Batch()
	for _, op := range b.ops {
		dr := b.store.doc(op.ref)
		switch op.kind {
		case opSet:
			wb.Set(dr, op.data)
		case opUpdate:
			wb.Update(dr, firestoreUpdates(op.data))
		case opDelete:
			wb.Delete(dr)
		}
	}
	_, err := wb.Commit(ctx)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("batch update: %w", ErrNotFound)
	}
	return err
}

func snapshotDocument(ref Ref, snap *firestore.DocumentSnapshot, err error) (*Document, error) {
	if status.Code(err) == codes.NotFound {
		return nil, notFound(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", ref.Path(), err)
	}
	if !snap.Exists() {
		return nil, notFound(ref)
	}
	return &Document{Ref: ref, Data: snap.Data(), Version: snap.UpdateTime.UnixNano()}, nil
}

func firestoreUpdates(fields map[string]interface{}) []firestore.Update {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	updates := make([]firestore.Update, 0, len(keys))
	for _, k := range keys {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: fields[k]})
	}
	return updates
}

var (
	_ Store = (*FirestoreStore)(nil)
	_ Tx    = (*firestoreTx)(nil)
	_ Batch = (*firestoreBatch)(nil)
)
