package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// idField is a reserved hash field holding the document's own id. Writing
// it with HSETNX is what makes CreateAt a compare-and-set; it is stripped
// from every read.
const idField = "_id"

// defaultOpTimeout bounds each store round-trip when no timeout is
// configured. The store never retries; a slow server surfaces as a failed
// operation at the caller.
const defaultOpTimeout = 5 * time.Second

// RedisStore implements Store on a Redis server. Documents are hashes,
// each collection keeps a membership set, and every write publishes the
// document id on the collection's channel to drive subscriptions.
type RedisStore struct {
	rdb       *redis.Client
	opTimeout time.Duration
	log       *slog.Logger
}

// Options tune a RedisStore.
type Options struct {
	// OpTimeout bounds each round-trip; zero means the default of 5s.
	OpTimeout time.Duration
	Logger    *slog.Logger
}

// NewRedisStore wraps an established client. The caller owns the client's
// lifecycle.
func NewRedisStore(rdb *redis.Client, opts Options) *RedisStore {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = defaultOpTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &RedisStore{rdb: rdb, opTimeout: opts.OpTimeout, log: opts.Logger}
}

// Connect dials Redis and verifies the connection with a bounded ping.
func Connect(addr string, opts Options) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return NewRedisStore(rdb, opts), nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func docKey(collection, id string) string {
	return "doc:" + collection + ":" + id
}

func colKey(collection string) string {
	return "col:" + collection
}

func channel(collection string) string {
	return "docstore:" + collection
}

func (s *RedisStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (Doc, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	fields, err := s.rdb.HGetAll(ctx, docKey(collection, id)).Result()
	if err != nil {
		return Doc{}, fmt.Errorf("docstore get %s/%s: %w", collection, id, err)
	}
	if len(fields) == 0 {
		return Doc{}, fmt.Errorf("docstore get %s/%s: %w", collection, id, ErrNotFound)
	}
	delete(fields, idField)
	return Doc{ID: id, Fields: fields}, nil
}

func (s *RedisStore) Create(ctx context.Context, collection string, fields map[string]string) (string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	id := uuid.NewString()
	if err := s.write(ctx, collection, id, fields); err != nil {
		return "", fmt.Errorf("docstore create %s: %w", collection, err)
	}
	s.notify(ctx, collection, id)
	return id, nil
}

func (s *RedisStore) CreateAt(ctx context.Context, collection, id string, fields map[string]string) (bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	// The HSETNX on the reserved id field is the compare-and-set: exactly
	// one of two racing creators observes true.
	created, err := s.rdb.HSetNX(ctx, docKey(collection, id), idField, id).Result()
	if err != nil {
		return false, fmt.Errorf("docstore create %s/%s: %w", collection, id, err)
	}
	if !created {
		return false, nil
	}
	if err := s.write(ctx, collection, id, fields); err != nil {
		return false, fmt.Errorf("docstore create %s/%s: %w", collection, id, err)
	}
	s.notify(ctx, collection, id)
	return true, nil
}

// write stores the field map and registers the id in the collection set.
func (s *RedisStore) write(ctx context.Context, collection, id string, fields map[string]string) error {
	args := make([]string, 0, 2*len(fields)+2)
	args = append(args, idField, id)
	for k, v := range fields {
		args = append(args, k, v)
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, docKey(collection, id), args)
	pipe.SAdd(ctx, colKey(collection), id)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Update(ctx context.Context, collection, id string, fields map[string]string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	exists, err := s.rdb.SIsMember(ctx, colKey(collection), id).Result()
	if err != nil {
		return fmt.Errorf("docstore update %s/%s: %w", collection, id, err)
	}
	if !exists {
		return fmt.Errorf("docstore update %s/%s: %w", collection, id, ErrNotFound)
	}

	args := make([]string, 0, 2*len(fields))
	for k, v := range fields {
		if k == idField {
			continue
		}
		args = append(args, k, v)
	}
	if err := s.rdb.HSet(ctx, docKey(collection, id), args).Err(); err != nil {
		return fmt.Errorf("docstore update %s/%s: %w", collection, id, err)
	}
	s.notify(ctx, collection, id)
	return nil
}

func (s *RedisStore) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	exists, err := s.rdb.SIsMember(ctx, colKey(collection), id).Result()
	if err != nil {
		return 0, fmt.Errorf("docstore increment %s/%s: %w", collection, id, err)
	}
	if !exists {
		return 0, fmt.Errorf("docstore increment %s/%s: %w", collection, id, ErrNotFound)
	}

	val, err := s.rdb.HIncrBy(ctx, docKey(collection, id), field, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("docstore increment %s/%s.%s: %w", collection, id, field, err)
	}
	s.notify(ctx, collection, id)
	return val, nil
}

func (s *RedisStore) Query(ctx context.Context, collection string, filter *Filter, order *Order) ([]Doc, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	ids, err := s.rdb.SMembers(ctx, colKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("docstore query %s: %w", collection, err)
	}
	if len(ids) == 0 {
		return []Doc{}, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(ids))
	for _, id := range ids {
		cmds[id] = pipe.HGetAll(ctx, docKey(collection, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("docstore query %s: %w", collection, err)
	}

	docs := make([]Doc, 0, len(ids))
	for _, id := range ids {
		fields := cmds[id].Val()
		if len(fields) == 0 {
			// id in the set but hash gone; skip rather than fail the query
			continue
		}
		delete(fields, idField)
		doc := Doc{ID: id, Fields: fields}
		if matches(doc, filter) {
			docs = append(docs, doc)
		}
	}
	sortDocs(docs, order)
	return docs, nil
}

func (s *RedisStore) Subscribe(ctx context.Context, collection string, filter *Filter, order *Order) (*Subscription, error) {
	initial, err := s.Query(ctx, collection, filter, order)
	if err != nil {
		return nil, err
	}

	pubsub := s.rdb.Subscribe(ctx, channel(collection))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("docstore subscribe %s: %w", collection, err)
	}

	// Buffer of one plus latest-wins push: a slow consumer sees the newest
	// snapshot, never a backlog of stale ones.
	out := make(chan []Doc, 1)
	push := func(snap []Doc) {
		for {
			select {
			case out <- snap:
				return
			default:
				select {
				case <-out:
				default:
				}
			}
		}
	}
	push(initial)

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}

	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				cancel()
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				snap, err := s.Query(ctx, collection, filter, order)
				if err != nil {
					s.log.Error("subscription requery failed",
						slog.String("collection", collection),
						slog.String("error", err.Error()))
					continue
				}
				push(snap)
			}
		}
	}()

	return &Subscription{C: out, cancel: cancel}, nil
}

// notify publishes a change signal for subscribers. Best effort: a failed
// publish is logged, not surfaced, since the write itself succeeded.
func (s *RedisStore) notify(ctx context.Context, collection, id string) {
	if err := s.rdb.Publish(ctx, channel(collection), id).Err(); err != nil {
		s.log.Error("change notify failed",
			slog.String("collection", collection),
			slog.String("doc", id),
			slog.String("error", err.Error()))
	}
}
