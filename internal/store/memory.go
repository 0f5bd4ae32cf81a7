package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yogaflow/studio-booking/internal/domain"
)

// Memory implements Store in process memory. Used by tests and local
// development; mirrors the Firestore adapter's semantics, including
// server timestamps and all-or-nothing batches.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	now         func() time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]map[string]any),
		now:         time.Now,
	}
}

// SetClock overrides the timestamp source. Test helper.
func (m *Memory) SetClock(now func() time.Time) {
	m.now = now
}

// GetDocument fetches one document by id
func (m *Memory) GetDocument(_ context.Context, collection, docID string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.collections[collection][docID]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return &Document{ID: docID, Data: copyData(doc)}, nil
}

// QueryDocuments fetches documents matching the query
func (m *Memory) QueryDocuments(_ context.Context, collection string, q Query) ([]*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []*Document
	for id, data := range m.collections[collection] {
		matched, err := matches(data, q.Where)
		if err != nil {
			return nil, domain.NewStoreError(CodeQueryDocument, err)
		}
		if matched {
			docs = append(docs, &Document{ID: id, Data: copyData(data)})
		}
	}

	if len(q.OrderBy) > 0 {
		sort.SliceStable(docs, func(i, j int) bool {
			for _, o := range q.OrderBy {
				c := compare(docs[i].Data[o.Field], docs[j].Data[o.Field])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	} else {
		// Stable order for tests
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	}

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

// NewDocID allocates a fresh document id
func (m *Memory) NewDocID(string) string {
	return uuid.New().String()
}

// BatchWrite applies all operations atomically under a single lock.
// Updates and deletes of missing documents fail the whole batch, matching
// Firestore's behavior.
func (m *Memory) BatchWrite(_ context.Context, ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, op := range ops {
		switch op.Kind {
		case OpAdd:
			if op.DocID == "" {
				return domain.NewStoreError(CodeBatchWrite, fmt.Errorf("add to %s without doc id", op.Collection))
			}
		case OpUpdate, OpDelete:
			if _, ok := m.collections[op.Collection][op.DocID]; !ok {
				return domain.NewStoreError(CodeBatchWrite, fmt.Errorf("%s %s/%s: document missing", op.Kind, op.Collection, op.DocID))
			}
		default:
			return domain.NewStoreError(CodeBatchWrite, fmt.Errorf("unknown op kind %q", op.Kind))
		}
	}

	ts := m.now()
	for _, op := range ops {
		switch op.Kind {
		case OpAdd:
			data := copyData(op.Data)
			data["createdAt"] = ts
			data["updatedAt"] = ts
			if m.collections[op.Collection] == nil {
				m.collections[op.Collection] = make(map[string]map[string]any)
			}
			m.collections[op.Collection][op.DocID] = data
		case OpUpdate:
			doc := m.collections[op.Collection][op.DocID]
			for k, v := range op.Data {
				doc[k] = v
			}
			doc["updatedAt"] = ts
		case OpDelete:
			delete(m.collections[op.Collection], op.DocID)
		}
	}
	return nil
}

// Close is a no-op for the in-memory store
func (m *Memory) Close() error {
	return nil
}

// Seed inserts a document directly, bypassing batch semantics. Test helper.
func (m *Memory) Seed(collection, docID string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]map[string]any)
	}
	doc := copyData(data)
	if _, ok := doc["createdAt"]; !ok {
		doc["createdAt"] = m.now()
	}
	if _, ok := doc["updatedAt"]; !ok {
		doc["updatedAt"] = m.now()
	}
	m.collections[collection][docID] = doc
}

func matches(data map[string]any, filters []Where) (bool, error) {
	for _, w := range filters {
		val := data[w.Field]
		switch w.Op {
		case "==":
			if compare(val, w.Value) != 0 {
				return false, nil
			}
		case "in":
			if !containedIn(val, w.Value) {
				return false, nil
			}
		case "<":
			if compare(val, w.Value) >= 0 {
				return false, nil
			}
		case "<=":
			if compare(val, w.Value) > 0 {
				return false, nil
			}
		case ">":
			if compare(val, w.Value) <= 0 {
				return false, nil
			}
		case ">=":
			if compare(val, w.Value) < 0 {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported operator %q", w.Op)
		}
	}
	return true, nil
}

func containedIn(val, set any) bool {
	switch s := set.(type) {
	case []string:
		for _, v := range s {
			if compare(val, v) == 0 {
				return true
			}
		}
	case []int64:
		for _, v := range s {
			if compare(val, v) == 0 {
				return true
			}
		}
	case []any:
		for _, v := range s {
			if compare(val, v) == 0 {
				return true
			}
		}
	}
	return false
}

// compare orders two document values. Numeric values compare across int64
// and float64 since the store does not distinguish them.
func compare(a, b any) int {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		if !bok {
			return -1
		}
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return -1
		}
		return strings.Compare(av, bv)
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return -1
		}
		if av == bv {
			return 0
		}
		if av {
			return 1
		}
		return -1
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return -1
		}
		return av.Compare(bv)
	case nil:
		if b == nil {
			return 0
		}
		return -1
	}
	return -1
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
