package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory keeps documents as decoded JSON in process memory. It honours the
// same filter, sort and uniqueness rules as the database drivers.
type Memory struct {
	mu    sync.Mutex
	colls map[string]*memCollection
}

func NewMemory() *Memory {
	return &Memory{colls: make(map[string]*memCollection)}
}

func (m *Memory) Collection(name string) Collection {
	return m.collection(name)
}

func (m *Memory) collection(name string) *memCollection {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.colls[name]
	if !ok {
		c = &memCollection{docs: make(map[string]*memDoc)}
		m.colls[name] = c
	}
	return c
}

func (m *Memory) EnsureCollection(_ context.Context, name string, unique ...string) error {
	if err := checkName(name); err != nil {
		return err
	}
	for _, f := range unique {
		if err := checkPath(f); err != nil {
			return err
		}
	}
	c := m.collection(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range unique {
		if !contains(c.unique, f) {
			c.unique = append(c.unique, f)
		}
	}
	return nil
}

func (m *Memory) Ping(context.Context) error  { return nil }
func (m *Memory) Close(context.Context) error { return nil }

type memDoc struct {
	raw     map[string]any
	created time.Time
	seq     uint64
}

type memCollection struct {
	mu     sync.RWMutex
	docs   map[string]*memDoc
	unique []string
	seq    uint64
}

func (c *memCollection) Find(_ context.Context, filter Filter, s Sort, out any) error {
	want, err := normalizeFilter(filter)
	if err != nil {
		return err
	}

	// UpdateByID swaps d.raw under the write lock, so copy each hit while
	// the read lock is held and sort the copies.
	c.mu.RLock()
	matched := make([]*memDoc, 0, len(c.docs))
	for _, d := range c.docs {
		if matches(d.raw, want) {
			snap := *d
			matched = append(matched, &snap)
		}
	}
	c.mu.RUnlock()

	sortDocs(matched, s)
	raws := make([]map[string]any, len(matched))
	for i, d := range matched {
		raws[i] = d.raw
	}
	return decode(raws, out)
}

func (c *memCollection) FindOne(ctx context.Context, filter Filter, out any) error {
	want, err := normalizeFilter(filter)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	var hit *memDoc
	for _, d := range c.docs {
		if matches(d.raw, want) && (hit == nil || d.seq < hit.seq) {
			hit = d
		}
	}
	if hit == nil {
		return ErrNotFound
	}
	return decode(hit.raw, out)
}

func (c *memCollection) FindByID(_ context.Context, id string, out any) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.docs[oid.Hex()]
	if !ok {
		return ErrNotFound
	}
	return decode(d.raw, out)
}

func (c *memCollection) Insert(_ context.Context, doc Document) error {
	meta := stamp(doc)
	raw, err := toMap(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	key := meta.ID.Hex()
	if _, exists := c.docs[key]; exists {
		return ErrDuplicate
	}
	if c.violatesUnique(key, raw) {
		return ErrDuplicate
	}
	c.seq++
	c.docs[key] = &memDoc{raw: raw, created: meta.CreatedAt, seq: c.seq}
	return nil
}

func (c *memCollection) UpdateByID(_ context.Context, id string, set Fields) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	patch, err := toMap(set)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.docs[oid.Hex()]
	if !ok {
		return ErrNotFound
	}
	next := make(map[string]any, len(d.raw)+len(patch))
	for k, v := range d.raw {
		next[k] = v
	}
	for k, v := range patch {
		next[k] = v
	}
	if c.violatesUnique(oid.Hex(), next) {
		return ErrDuplicate
	}
	d.raw = next
	return nil
}

func (c *memCollection) DeleteByID(_ context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[oid.Hex()]; !ok {
		return ErrNotFound
	}
	delete(c.docs, oid.Hex())
	return nil
}

// violatesUnique must be called with c.mu held.
func (c *memCollection) violatesUnique(key string, raw map[string]any) bool {
	for _, field := range c.unique {
		v, ok := lookup(raw, field)
		if !ok || v == nil {
			continue
		}
		for otherKey, other := range c.docs {
			if otherKey == key {
				continue
			}
			if ov, ok := lookup(other.raw, field); ok && reflect.DeepEqual(ov, v) {
				return true
			}
		}
	}
	return false
}

func sortDocs(docs []*memDoc, s Sort) {
	sort.SliceStable(docs, func(i, j int) bool {
		c := compareDocs(docs[i], docs[j], s.Field)
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
}

// compareDocs orders by field, falling back to insertion order on ties.
func compareDocs(a, b *memDoc, field string) int {
	c := 0
	if field == "" || field == "createdAt" {
		switch {
		case a.created.Before(b.created):
			c = -1
		case a.created.After(b.created):
			c = 1
		}
	} else {
		av, _ := lookup(a.raw, field)
		bv, _ := lookup(b.raw, field)
		c = compareValues(av, bv)
	}
	if c != 0 {
		return c
	}
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	}
	return 0
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		if bs, ok := b.(string); ok {
			return strings.Compare(av, bs)
		}
	case float64:
		if bf, ok := b.(float64); ok {
			switch {
			case av < bf:
				return -1
			case av > bf:
				return 1
			}
			return 0
		}
	case bool:
		if bb, ok := b.(bool); ok && av != bb {
			if bb {
				return -1
			}
			return 1
		}
		return 0
	}
	// missing values sort first
	switch {
	case a == nil && b != nil:
		return -1
	case a != nil && b == nil:
		return 1
	}
	return 0
}

func matches(raw, want map[string]any) bool {
	for path, v := range want {
		got, ok := lookup(raw, path)
		if !ok || !reflect.DeepEqual(got, v) {
			return false
		}
	}
	return true
}

func lookup(raw map[string]any, path string) (any, bool) {
	var cur any = raw
	for _, p := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[p]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func normalizeFilter(filter Filter) (map[string]any, error) {
	out := make(map[string]any, len(filter))
	for path, v := range filter {
		if err := checkPath(path); err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("docstore: encode filter %q: %w", path, err)
		}
		var nv any
		if err := json.Unmarshal(b, &nv); err != nil {
			return nil, err
		}
		out[path] = nv
	}
	return out, nil
}

func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode document: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("docstore: decode document: %w", err)
	}
	return m, nil
}

func decode(v any, out any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("docstore: decode result: %w", err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
