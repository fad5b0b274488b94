// Package memstore keeps documents in process memory. Documents are stored
// BSON encoded so callers never share memory with the store and the model
// codecs run exactly as they do against MongoDB.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/repository"
)

// DB holds every collection behind one mutex.
type DB struct {
	mu  sync.Mutex
	seq int64
	now func() time.Time

	carts       *table
	checkouts   *table
	orders      *table
	products    *table
	users       *table
	subscribers *table
}

func NewDB(now func() time.Time) *DB {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &DB{
		now:         now,
		carts:       newTable(),
		checkouts:   newTable(),
		orders:      newTable(),
		products:    newTable(),
		users:       newTable(),
		subscribers: newTable(),
	}
}

// New returns a Store over a fresh DB. Its Transactor is not atomic.
func New() *repository.Store {
	return NewDB(nil).Store()
}

func (db *DB) Store() *repository.Store {
	return &repository.Store{
		Carts:       &carts{db: db},
		Checkouts:   &checkouts{db: db},
		Orders:      &orders{db: db},
		Products:    &products{db: db},
		Users:       &users{db: db},
		Subscribers: &subscribers{db: db},
		Tx:          repository.Passthrough{},
		Ping:        func(context.Context) error { return nil },
	}
}

type row struct {
	raw bson.Raw
	seq int64
	key string
}

// table is one collection with an optional unique key per document.
type table struct {
	rows   map[primitive.ObjectID]row
	unique map[string]primitive.ObjectID
}

func newTable() *table {
	return &table{
		rows:   map[primitive.ObjectID]row{},
		unique: map[string]primitive.ObjectID{},
	}
}

// put stores doc under id. An empty key opts out of the unique check.
func (db *DB) put(t *table, id primitive.ObjectID, key string, doc interface{}) error {
	if key != "" {
		if holder, ok := t.unique[key]; ok && holder != id {
			return fmt.Errorf("key %q: %w", key, repository.ErrDuplicate)
		}
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	prev, exists := t.rows[id]
	seq := prev.seq
	if !exists {
		db.seq++
		seq = db.seq
	}
	if exists && prev.key != "" {
		delete(t.unique, prev.key)
	}
	if key != "" {
		t.unique[key] = id
	}
	t.rows[id] = row{raw: raw, seq: seq, key: key}
	return nil
}

func (t *table) remove(id primitive.ObjectID) bool {
	prev, ok := t.rows[id]
	if !ok {
		return false
	}
	if prev.key != "" {
		delete(t.unique, prev.key)
	}
	delete(t.rows, id)
	return true
}

func (t *table) lookup(key string) (row, bool) {
	id, ok := t.unique[key]
	if !ok {
		return row{}, false
	}
	r, ok := t.rows[id]
	return r, ok
}

// newestFirst lists rows by descending insertion order.
func (t *table) newestFirst() []row {
	out := make([]row, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq > out[j].seq })
	return out
}

func decode[T any](r row) (*T, error) {
	var v T
	if err := bson.Unmarshal(r.raw, &v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &v, nil
}

func decodeAll[T any](rows []row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v, err := decode[T](r)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func window[T any](items []T, page repository.Page) []T {
	if page.Limit <= 0 {
		return items
	}
	skip := page.Skip()
	if skip >= int64(len(items)) {
		return []T{}
	}
	end := skip + page.Limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[skip:end]
}
