package memory

import "sort"

type row[T any] struct {
	doc T
	seq uint64
}

// table keeps documents by id and remembers insertion order so listings are
// stable even when timestamps collide.
type table[T any] struct {
	rows map[string]row[T]
	next uint64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]row[T])}
}

func (t *table[T]) get(id string) (T, bool) {
	r, ok := t.rows[id]
	return r.doc, ok
}

func (t *table[T]) put(id string, doc T) {
	if existing, ok := t.rows[id]; ok {
		t.rows[id] = row[T]{doc: doc, seq: existing.seq}
		return
	}
	t.next++
	t.rows[id] = row[T]{doc: doc, seq: t.next}
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

func (t *table[T]) find(match func(T) bool) (T, bool) {
	for _, r := range t.rows {
		if match(r.doc) {
			return r.doc, true
		}
	}
	var zero T
	return zero, false
}

// newestFirst returns the matching documents, most recently inserted first.
func (t *table[T]) newestFirst(keep func(T) bool) []T {
	rows := make([]row[T], 0, len(t.rows))
	for _, r := range t.rows {
		if keep == nil || keep(r.doc) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.doc)
	}
	return out
}
