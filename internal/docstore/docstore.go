// Package docstore provides a small document store over named collections.
//
// Documents are string-valued field maps addressed by (collection, id).
// Numeric fields are adjusted only through Increment, which is atomic on
// the server side; CreateAt is a compare-and-set, so a deterministic key
// can encode "this relationship exists" without a separate existence check.
// Subscribe delivers full result-set snapshots whenever a collection
// changes, which is what the live feed projection is built on.
package docstore

import (
	"context"
	"errors"
	"sort"
)

// Collection names used by the application.
const (
	Users       = "users"
	Posts       = "posts"
	Comments    = "comments"
	Likes       = "likes"
	Credentials = "credentials"
)

// ErrNotFound is returned by Get and Update when no document exists at the
// requested id.
var ErrNotFound = errors.New("docstore: document not found")

// Doc is a stored document with its id.
type Doc struct {
	ID     string
	Fields map[string]string
}

// Filter restricts a query to documents whose field equals the value.
type Filter struct {
	Field string
	Value string
}

// Order sorts query results lexically by a field. Timestamps encoded with
// models.TimeLayout sort chronologically under lexical order. Ties are
// broken by document id descending so repeated deliveries of the same data
// arrive in the same order.
type Order struct {
	Field string
	Desc  bool
}

// Subscription is a live query. C carries full ordered snapshots: one
// immediately on subscribe, then one after every create or update in the
// collection. Under a slow consumer intermediate snapshots are dropped and
// only the latest is kept. Cancel releases the underlying resources and
// closes C; it is safe to call more than once.
type Subscription struct {
	C      <-chan []Doc
	cancel func()
}

// Cancel terminates the subscription.
func (s *Subscription) Cancel() {
	s.cancel()
}

// Store is the document store surface the application depends on. Passed
// explicitly to every component so tests can back it with an in-process
// server.
type Store interface {
	// Get returns the document at id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Doc, error)

	// Create stores fields under a store-assigned id and returns it.
	Create(ctx context.Context, collection string, fields map[string]string) (string, error)

	// CreateAt stores fields under the caller's id if and only if no
	// document exists there. Returns false, with no write, when the id is
	// already taken. The check and the write are one atomic operation.
	CreateAt(ctx context.Context, collection, id string, fields map[string]string) (bool, error)

	// Update merges fields into the existing document at id, last write
	// wins per field. ErrNotFound when the document does not exist.
	Update(ctx context.Context, collection, id string, fields map[string]string) error

	// Increment atomically adjusts a numeric field by delta and returns the
	// new value. The adjustment happens server-side; concurrent callers
	// never lose updates.
	Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error)

	// Query returns all documents matching filter, sorted per order. Both
	// filter and order may be nil.
	Query(ctx context.Context, collection string, filter *Filter, order *Order) ([]Doc, error)

	// Subscribe opens a live query over the collection. The returned
	// subscription must be cancelled when no longer needed.
	Subscribe(ctx context.Context, collection string, filter *Filter, order *Order) (*Subscription, error)
}

// matches reports whether the document passes the filter.
func matches(d Doc, filter *Filter) bool {
	if filter == nil {
		return true
	}
	return d.Fields[filter.Field] == filter.Value
}

// sortDocs orders docs per order, with id-descending tie-break.
func sortDocs(docs []Doc, order *Order) {
	if order == nil {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].Fields[order.Field], docs[j].Fields[order.Field]
		if a != b {
			if order.Desc {
				return a > b
			}
			return a < b
		}
		return docs[i].ID > docs[j].ID
	})
}
