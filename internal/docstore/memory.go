package docstore

import (
	"context"
	"sync"
	"time"
)

type memoryDoc struct {
	ref     Ref
	data    map[string]interface{}
	version int64
}

// MemoryStore is an in-process Store with optimistic transactions. Every
// commit bumps a global sequence that becomes the version of each document
// it wrote.
type MemoryStore struct {
	mu          sync.Mutex
	docs        map[string]memoryDoc
	seq         int64
	maxAttempts int
	sink        ChangeSink
}

func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		docs:        make(map[string]memoryDoc),
		maxAttempts: opts.maxAttempts(),
		sink:        opts.Sink,
	}
}

func (s *MemoryStore) Get(_ context.Context, ref Ref) (*Document, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[ref.Path()]
	if !ok {
		return nil, notFound(ref)
	}
	return &Document{Ref: ref, Data: cloneMap(doc.data), Version: doc.version}, nil
}

func (s *MemoryStore) Set(ctx context.Context, ref Ref, data map[string]interface{}) error {
	return s.write(ctx, opSet, ref, data)
}

func (s *MemoryStore) Update(ctx context.Context, ref Ref, fields map[string]interface{}) error {
	return s.write(ctx, opUpdate, ref, fields)
}

func (s *MemoryStore) Delete(ctx context.Context, ref Ref) error {
	return s.write(ctx, opDelete, ref, nil)
}

func (s *MemoryStore) write(ctx context.Context, kind opKind, ref Ref, data map[string]interface{}) error {
	var buf writeBuffer
	if err := buf.add(kind, ref, data); err != nil {
		return err
	}
	return s.commit(ctx, nil, buf.ops)
}

func (s *MemoryStore) Query(_ context.Context, collection string, filters ...Filter) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var docs []Document
	for _, doc := range s.docs {
		if doc.ref.Collection != collection || !matches(doc.data, filters) {
			continue
		}
		docs = append(docs, Document{Ref: doc.ref, Data: cloneMap(doc.data), Version: doc.version})
	}
	sortDocuments(docs)
	return docs, nil
}

func (s *MemoryStore) Batch() Batch {
	return &memoryBatch{store: s}
}

func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return retryConflicts(ctx, s.maxAttempts, func() error {
		tx := &memoryTx{store: s, reads: make(map[string]int64)}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if tx.writes.err != nil {
			return tx.writes.err
		}
		return s.commit(ctx, tx.reads, tx.writes.ops)
	})
}

// commit validates the read set and applies ops atomically. reads maps a
// document path to the version observed by the transaction, 0 for absent.
func (s *MemoryStore) commit(ctx context.Context, reads map[string]int64, ops []writeOp) error {
	s.mu.Lock()
	for path, version := range reads {
		if s.docs[path].version != version {
			s.mu.Unlock()
			return ErrConflict
		}
	}
	docs, err := stageOps(ops, func(ref Ref) (map[string]interface{}, error) {
		doc, ok := s.docs[ref.Path()]
		if !ok {
			return nil, nil
		}
		return doc.data, nil
	})
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if len(docs) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.seq++
	for _, st := range docs {
		if st.current == nil {
			delete(s.docs, st.ref.Path())
			continue
		}
		s.docs[st.ref.Path()] = memoryDoc{ref: st.ref, data: st.current, version: s.seq}
	}
	changes := changesFor(docs, time.Now().UTC())
	s.mu.Unlock()

	publish(ctx, s.sink, changes)
	return nil
}

type memoryTx struct {
	store  *MemoryStore
	reads  map[string]int64
	writes writeBuffer
}

func (t *memoryTx) Get(ref Ref) (*Document, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	doc, ok := t.store.docs[ref.Path()]
	if _, seen := t.reads[ref.Path()]; !seen {
		t.reads[ref.Path()] = doc.version
	}
	if !ok {
		return nil, notFound(ref)
	}
	return &Document{Ref: ref, Data: cloneMap(doc.data), Version: doc.version}, nil
}

func (t *memoryTx) Set(ref Ref, data map[string]interface{}) error {
	return t.writes.add(opSet, ref, data)
}

func (t *memoryTx) Update(ref Ref, fields map[string]interface{}) error {
	return t.writes.add(opUpdate, ref, fields)
}

func (t *memoryTx) Delete(ref Ref) error {
	return t.writes.add(opDelete, ref, nil)
}

type memoryBatch struct {
	writeBuffer
	store *MemoryStore
}

func (b *memoryBatch) Commit(ctx context.Context) error {
	if err := b.check(); err != nil {
		return err
	}
	return b.store.commit(ctx, nil, b.ops)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Tx    = (*memoryTx)(nil)
	_ Batch = (*memoryBatch)(nil)
)
