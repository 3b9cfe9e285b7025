package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
)

// MemoryDB is an in-memory stand-in for a Firestore database: named
// collections of ordered documents with filtered, ordered, limited queries.
// It exists so the whole backend runs unmodified when no real credentials
// are configured.
//
// The source system's fake was single-threaded; here request handlers run
// on concurrent goroutines, so all access goes through one RWMutex.
type MemoryDB struct {
	mu          sync.RWMutex
	collections map[string]*MemoryCollection
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{collections: make(map[string]*MemoryCollection)}
}

// Collection returns the named collection, creating it when absent.
func (d *MemoryDB) Collection(name string) *MemoryCollection {
	d.mu.Lock()
	defer d.mu.Unlock()
	col, ok := d.collections[name]
	if !ok {
		col = &MemoryCollection{db: d, name: name, nextID: 1}
		d.collections[name] = col
	}
	return col
}

type MemoryCollection struct {
	db     *MemoryDB
	name   string
	docs   []map[string]any
	nextID int
}

// Add appends data under a freshly generated sequential id and returns the id.
func (c *MemoryCollection) Add(data map[string]any) string {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	id := fmt.Sprintf("doc%d", c.nextID)
	c.nextID++
	doc := cloneDoc(data)
	doc["id"] = id
	c.docs = append(c.docs, doc)
	return id
}

// Doc returns a reference to the document with the given id; an empty id
// allocates a new one.
func (c *MemoryCollection) Doc(id string) *MemoryDocRef {
	if id == "" {
		c.db.mu.Lock()
		id = fmt.Sprintf("doc%d", c.nextID)
		c.nextID++
		c.db.mu.Unlock()
	}
	return &MemoryDocRef{col: c, ID: id}
}

func (c *MemoryCollection) Where(field, op string, value any) *MemoryQuery {
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()
	q := &MemoryQuery{db: c.db}
	for _, doc := range c.docs {
		if matches(doc, field, op, value) {
			q.docs = append(q.docs, cloneDoc(doc))
		}
	}
	return q
}

// GetAll returns snapshots of every document in insertion order.
func (c *MemoryCollection) GetAll() []*MemorySnapshot {
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()
	out := make([]*MemorySnapshot, 0, len(c.docs))
	for _, doc := range c.docs {
		out = append(out, &MemorySnapshot{ID: doc["id"].(string), Exists: true, data: cloneDoc(doc)})
	}
	return out
}

type MemoryDocRef struct {
	col *MemoryCollection
	ID  string
}

// Set upserts by id: insert when absent, otherwise replace in place so the
// document keeps its position in the collection.
func (r *MemoryDocRef) Set(data map[string]any) {
	r.col.db.mu.Lock()
	defer r.col.db.mu.Unlock()
	doc := cloneDoc(data)
	doc["id"] = r.ID
	for i, existing := range r.col.docs {
		if existing["id"] == r.ID {
			r.col.docs[i] = doc
			return
		}
	}
	r.col.docs = append(r.col.docs, doc)
}

func (r *MemoryDocRef) Get() *MemorySnapshot {
	r.col.db.mu.RLock()
	defer r.col.db.mu.RUnlock()
	for _, doc := range r.col.docs {
		if doc["id"] == r.ID {
			return &MemorySnapshot{ID: r.ID, Exists: true, data: cloneDoc(doc)}
		}
	}
	return &MemorySnapshot{ID: r.ID, Exists: false}
}

func (r *MemoryDocRef) Delete() {
	r.col.db.mu.Lock()
	defer r.col.db.mu.Unlock()
	for i, doc := range r.col.docs {
		if doc["id"] == r.ID {
			r.col.docs = append(r.col.docs[:i], r.col.docs[i+1:]...)
			return
		}
	}
}

type MemorySnapshot struct {
	ID     string
	Exists bool
	data   map[string]any
}

func (s *MemorySnapshot) Data() map[string]any { return s.data }

// MemoryQuery holds an already-filtered snapshot of documents; further
// chaining narrows, orders and truncates that snapshot.
type MemoryQuery struct {
	db   *MemoryDB
	docs []map[string]any
}

func (q *MemoryQuery) Where(field, op string, value any) *MemoryQuery {
	kept := q.docs[:0]
	for _, doc := range q.docs {
		if matches(doc, field, op, value) {
			kept = append(kept, doc)
		}
	}
	q.docs = kept
	return q
}

// OrderBy sorts stably so documents with equal keys keep insertion order.
func (q *MemoryQuery) OrderBy(field, direction string) *MemoryQuery {
	desc := strings.EqualFold(direction, "desc")
	sort.SliceStable(q.docs, func(i, j int) bool {
		cmp := compareValues(q.docs[i][field], q.docs[j][field])
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return q
}

func (q *MemoryQuery) Limit(n int) *MemoryQuery {
	if n >= 0 && n < len(q.docs) {
		q.docs = q.docs[:n]
	}
	return q
}

func (q *MemoryQuery) GetAll() []*MemorySnapshot {
	out := make([]*MemorySnapshot, 0, len(q.docs))
	for _, doc := range q.docs {
		id, _ := doc["id"].(string)
		out = append(out, &MemorySnapshot{ID: id, Exists: true, data: doc})
	}
	return out
}

func matches(doc map[string]any, field, op string, value any) bool {
	got, ok := doc[field]
	if !ok {
		return false
	}
	cmp := compareValues(got, value)
	switch op {
	case "", "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	default:
		return false
	}
}

// compareValues orders two scalar document values: numerically when both
// sides are numbers, lexically otherwise. Missing values sort first.
func compareValues(a, b any) int {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(toComparableString(a), toComparableString(b))
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func toComparableString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func cloneDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// memoryStore adapts MemoryDB to the Store interface.
type memoryStore struct {
	db *MemoryDB
}

// NewMemoryStore returns a Store backed by an in-memory database.
func NewMemoryStore() Store {
	return &memoryStore{db: NewMemoryDB()}
}

func (s *memoryStore) Create(ctx context.Context, collection string, data map[string]any) (map[string]any, error) {
	id, doc := prepareCreate(data)
	s.db.Collection(collection).Doc(id).Set(doc)
	return doc, nil
}

func (s *memoryStore) CreateAt(ctx context.Context, collection, id string, data map[string]any) (map[string]any, error) {
	ref := s.db.Collection(collection).Doc(id)
	if ref.Get().Exists {
		return nil, fmt.Errorf("document %s/%s: %w", collection, id, apperr.ErrAlreadyExists)
	}
	doc := cloneDoc(data)
	doc["id"] = id
	if _, ok := doc["created_at"]; !ok {
		doc["created_at"] = nowISO()
	}
	ref.Set(doc)
	return doc, nil
}

func (s *memoryStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	snap := s.db.Collection(collection).Doc(id).Get()
	if !snap.Exists {
		return nil, fmt.Errorf("document %s/%s: %w", collection, id, apperr.ErrNotFound)
	}
	return snap.Data(), nil
}

func (s *memoryStore) Update(ctx context.Context, collection, id string, data map[string]any) (map[string]any, error) {
	ref := s.db.Collection(collection).Doc(id)
	snap := ref.Get()
	if !snap.Exists {
		return nil, fmt.Errorf("document %s/%s: %w", collection, id, apperr.ErrNotFound)
	}
	merged := snap.Data()
	for k, v := range data {
		merged[k] = v
	}
	merged["updated_at"] = nowISO()
	ref.Set(merged)
	return merged, nil
}

func (s *memoryStore) Delete(ctx context.Context, collection, id string) error {
	s.db.Collection(collection).Doc(id).Delete()
	return nil
}

func (s *memoryStore) List(ctx context.Context, collection string, opts ListOptions) ([]map[string]any, error) {
	col := s.db.Collection(collection)

	var snaps []*MemorySnapshot
	if len(opts.Filters) == 0 && opts.OrderBy == "" && opts.Limit == 0 {
		snaps = col.GetAll()
	} else {
		var q *MemoryQuery
		if len(opts.Filters) > 0 {
			first := opts.Filters[0]
			q = col.Where(first.Field, first.Op, first.Value)
			for _, f := range opts.Filters[1:] {
				q = q.Where(f.Field, f.Op, f.Value)
			}
		} else {
			q = col.Where("id", "!=", "")
		}
		if opts.OrderBy != "" {
			q = q.OrderBy(opts.OrderBy, opts.Direction)
		}
		if opts.Limit > 0 {
			q = q.Limit(opts.Limit)
		}
		snaps = q.GetAll()
	}

	out := make([]map[string]any, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, snap.Data())
	}
	return out, nil
}
