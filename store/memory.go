package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Memory implements Store in process, for tests and local runs. Records are
// normalized through their JSON encoding; the contract types use identical
// JSON and Firestore field names, so queries behave the same against both
// implementations.
type Memory struct {
	mu   sync.Mutex
	seq  int
	docs map[string][]*memoryDoc
	subs []*memorySub
}

type memoryDoc struct {
	id     string
	fields map[string]any
}

type memorySub struct {
	q        Query
	fn       func([]Document)
	canceled bool
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]*memoryDoc)}
}

func (m *Memory) Documents(_ context.Context, q Query) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(q), nil
}

// Subscribe delivers the current result set synchronously, then a fresh
// snapshot after every matching append or update.
func (m *Memory) Subscribe(_ context.Context, q Query, fn func([]Document)) (CancelFunc, error) {
	sub := &memorySub{q: q, fn: fn}
	m.mu.Lock()
	m.subs = append(m.subs, sub)
	snap := m.snapshotLocked(q)
	m.mu.Unlock()

	fn(snap)

	return func() {
		m.mu.Lock()
		sub.canceled = true
		m.mu.Unlock()
	}, nil
}

func (m *Memory) Append(_ context.Context, collection string, record any) (string, error) {
	fields, err := normalizeRecord(record)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.seq++
	id := fmt.Sprintf("doc-%d", m.seq)
	m.docs[collection] = append(m.docs[collection], &memoryDoc{id: id, fields: fields})
	deliveries := m.deliveriesLocked(collection)
	m.mu.Unlock()

	deliver(deliveries)
	return id, nil
}

func (m *Memory) Update(_ context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	var target *memoryDoc
	for _, d := range m.docs[collection] {
		if d.id == id {
			target = d
			break
		}
	}
	if target == nil {
		m.mu.Unlock()
		return fmt.Errorf("no document %s in %s", id, collection)
	}
	for k, v := range fields {
		target.fields[k] = normalizeValue(v)
	}
	deliveries := m.deliveriesLocked(collection)
	m.mu.Unlock()

	deliver(deliveries)
	return nil
}

type delivery struct {
	fn   func([]Document)
	docs []Document
}

// deliveriesLocked computes snapshots for every live subscription on a
// collection. Callbacks run after the store lock is released, so a callback
// may itself read or write the store.
func (m *Memory) deliveriesLocked(collection string) []delivery {
	var out []delivery
	for _, sub := range m.subs {
		if sub.canceled || sub.q.Collection != collection {
			continue
		}
		out = append(out, delivery{fn: sub.fn, docs: m.snapshotLocked(sub.q)})
	}
	return out
}

func deliver(deliveries []delivery) {
	for _, d := range deliveries {
		d.fn(d.docs)
	}
}

func (m *Memory) snapshotLocked(q Query) []Document {
	var docs []Document
	for _, d := range m.docs[q.Collection] {
		if d.matches(q) {
			docs = append(docs, d.frozen())
		}
	}
	if q.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			a := docs[i].(memorySnapshot).fields[q.OrderBy]
			b := docs[j].(memorySnapshot).fields[q.OrderBy]
			return lessValue(a, b)
		})
	}
	return docs
}

func (d *memoryDoc) matches(q Query) bool {
	for _, f := range q.Where {
		if !matchFilter(d.fields, f) {
			return false
		}
	}
	if len(q.WhereAny) > 0 {
		matched := false
		for _, f := range q.WhereAny {
			if matchFilter(d.fields, f) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func (d *memoryDoc) frozen() memorySnapshot {
	fields := make(map[string]any, len(d.fields))
	for k, v := range d.fields {
		fields[k] = v
	}
	return memorySnapshot{id: d.id, fields: fields}
}

func matchFilter(fields map[string]any, f Filter) bool {
	got, ok := fields[f.Path]
	if !ok {
		return false
	}
	switch f.Op {
	case OpEqual:
		return reflect.DeepEqual(got, normalizeValue(f.Value))
	case OpIn:
		list, ok := normalizeValue(f.Value).([]any)
		if !ok {
			return false
		}
		for _, v := range list {
			if reflect.DeepEqual(got, v) {
				return true
			}
		}
	}
	return false
}

// lessValue compares normalized field values. Times survive normalization
// as RFC 3339 strings, which order chronologically.
func lessValue(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		return av < bv
	case float64:
		bv, _ := b.(float64)
		return av < bv
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func normalizeRecord(record any) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func normalizeValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// memorySnapshot is a point-in-time copy of a document; later updates do
// not leak into snapshots already delivered.
type memorySnapshot struct {
	id     string
	fields map[string]any
}

func (d memorySnapshot) ID() string {
	return d.id
}

func (d memorySnapshot) DataTo(v any) error {
	data, err := json.Marshal(d.fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
