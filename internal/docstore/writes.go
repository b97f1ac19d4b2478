package docstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"sort"
	"time"
)

type opKind int

const (
	opSet opKind = iota
	opUpdate
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opSet:
		return "set"
	case opUpdate:
		return "update"
	default:
		return "delete"
	}
}

type writeOp struct {
	kind opKind
	ref  Ref
	data map[string]interface{}
}

// apply returns the document state after the op. A nil result means the
// document does not exist.
func (op writeOp) apply(current map[string]interface{}) (map[string]interface{}, error) {
	switch op.kind {
	case opSet:
		return cloneMap(op.data), nil
	case opUpdate:
		if current == nil {
			return nil, notFound(op.ref)
		}
		next := cloneMap(current)
		for k, v := range op.data {
			next[k] = cloneValue(v)
		}
		return next, nil
	default:
		return nil, nil
	}
}

// writeBuffer collects ops for transactions and batches.
type writeBuffer struct {
	ops []writeOp
	err error
}

func (b *writeBuffer) add(kind opKind, ref Ref, data map[string]interface{}) error {
	if err := ref.Validate(); err != nil {
		if b.err == nil {
			b.err = err
		}
		return err
	}
	b.ops = append(b.ops, writeOp{kind: kind, ref: ref, data: cloneMap(data)})
	return nil
}

func (b *writeBuffer) Set(ref Ref, data map[string]interface{}) {
	_ = b.add(opSet, ref, data)
}

func (b *writeBuffer) Update(ref Ref, fields map[string]interface{}) {
	_ = b.add(opUpdate, ref, fields)
}

func (b *writeBuffer) Delete(ref Ref) {
	_ = b.add(opDelete, ref, nil)
}

func (b *writeBuffer) Len() int {
	return len(b.ops)
}

func (b *writeBuffer) check() error {
	if b.err != nil {
		return b.err
	}
	if len(b.ops) > MaxBatchWrites {
		return fmt.Errorf("%w: %d writes", ErrBatchTooLarge, len(b.ops))
	}
	return nil
}

// staged tracks one document across the ops of a single commit.
type staged struct {
	ref     Ref
	before  map[string]interface{}
	current map[string]interface{}
}

func stageOps(ops []writeOp, load func(Ref) (map[string]interface{}, error)) ([]*staged, error) {
	byPath := make(map[string]*staged)
	var order []*staged
	for _, op := range ops {
		st, ok := byPath[op.ref.Path()]
		if !ok {
			data, err := load(op.ref)
			if err != nil {
				return nil, err
			}
			st = &staged{ref: op.ref, before: data, current: data}
			byPath[op.ref.Path()] = st
			order = append(order, st)
		}
		next, err := op.apply(st.current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op.kind, err)
		}
		st.current = next
	}
	return order, nil
}

func changesFor(docs []*staged, at time.Time) []Change {
	changes := make([]Change, 0, len(docs))
	for _, st := range docs {
		if st.before == nil && st.current == nil {
			continue
		}
		changes = append(changes, Change{
			Collection: st.ref.Collection,
			ID:         st.ref.ID,
			Before:     cloneMap(st.before),
			After:      cloneMap(st.current),
			Timestamp:  at,
		})
	}
	return changes
}

func publish(ctx context.Context, sink ChangeSink, changes []Change) {
	if sink == nil || len(changes) == 0 {
		return
	}
	if err := sink.Publish(ctx, changes); err != nil {
		log.Printf("Error publishing %d document changes: %v", len(changes), err)
	}
}

// retryConflicts re-runs attempt while it fails with ErrConflict.
func retryConflicts(ctx context.Context, maxAttempts int, attempt func() error) error {
	var err error
	for i := 0; i < maxAttempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = attempt()
		if !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrTooManyAttempts, maxAttempts, err)
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func matches(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok || !valuesEqual(v, f.Value) {
			return false
		}
	}
	return true
}

// valuesEqual compares numbers by value so an int filter matches a float64
// decoded from JSON.
func valuesEqual(a, b interface{}) bool {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func sortDocuments(docs []Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].Ref.ID < docs[j].Ref.ID })
}
