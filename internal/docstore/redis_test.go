package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisStore(rdb, Options{})
}

func TestRedisStore_CreateAndGet(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "posts", map[string]string{"content": "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.Get(ctx, "posts", id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "hello", doc.Fields["content"])
	// reserved id field never leaks into reads
	assert.NotContains(t, doc.Fields, "_id")
}

func TestRedisStore_Get_NotFound(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "posts", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CreateAt_CompareAndSet(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateAt(ctx, "likes", "u1_p1", map[string]string{"userId": "u1"})
	require.NoError(t, err)
	assert.True(t, created)

	// second create at the same key loses the CAS and writes nothing
	created, err = store.CreateAt(ctx, "likes", "u1_p1", map[string]string{"userId": "intruder"})
	require.NoError(t, err)
	assert.False(t, created)

	doc, err := store.Get(ctx, "likes", "u1_p1")
	require.NoError(t, err)
	assert.Equal(t, "u1", doc.Fields["userId"])
}

func TestRedisStore_Update(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "users", map[string]string{"name": "Alice", "title": "dev"})
	require.NoError(t, err)

	// partial update merges, untouched fields survive
	require.NoError(t, store.Update(ctx, "users", id, map[string]string{"name": "Alice2"}))

	doc, err := store.Get(ctx, "users", id)
	require.NoError(t, err)
	assert.Equal(t, "Alice2", doc.Fields["name"])
	assert.Equal(t, "dev", doc.Fields["title"])

	err = store.Update(ctx, "users", "ghost", map[string]string{"name": "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Increment(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "posts", map[string]string{"likeCount": "0"})
	require.NoError(t, err)

	n, err := store.Increment(ctx, "posts", id, "likeCount", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = store.Increment(ctx, "posts", id, "likeCount", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = store.Increment(ctx, "posts", "ghost", "likeCount", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Query_FilterAndOrder(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	for _, d := range []map[string]string{
		{"authorId": "u1", "createdAt": "2026-01-01T00:00:00.000000000Z"},
		{"authorId": "u2", "createdAt": "2026-01-03T00:00:00.000000000Z"},
		{"authorId": "u1", "createdAt": "2026-01-02T00:00:00.000000000Z"},
	} {
		_, err := store.Create(ctx, "posts", d)
		require.NoError(t, err)
	}

	byAuthor, err := store.Query(ctx, "posts", &Filter{Field: "authorId", Value: "u1"}, nil)
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	newest, err := store.Query(ctx, "posts", nil, &Order{Field: "createdAt", Desc: true})
	require.NoError(t, err)
	require.Len(t, newest, 3)
	assert.Equal(t, "2026-01-03T00:00:00.000000000Z", newest[0].Fields["createdAt"])
	assert.Equal(t, "2026-01-01T00:00:00.000000000Z", newest[2].Fields["createdAt"])
}

func TestRedisStore_Query_TieBreakIsStable(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	ts := "2026-01-01T00:00:00.000000000Z"
	for i := 0; i < 5; i++ {
		_, err := store.Create(ctx, "posts", map[string]string{"createdAt": ts})
		require.NoError(t, err)
	}

	first, err := store.Query(ctx, "posts", nil, &Order{Field: "createdAt", Desc: true})
	require.NoError(t, err)
	second, err := store.Query(ctx, "posts", nil, &Order{Field: "createdAt", Desc: true})
	require.NoError(t, err)

	require.Len(t, first, 5)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestRedisStore_Subscribe(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "posts", map[string]string{"content": "first"})
	require.NoError(t, err)

	sub, err := store.Subscribe(ctx, "posts", nil, &Order{Field: "createdAt", Desc: true})
	require.NoError(t, err)
	defer sub.Cancel()

	// initial snapshot is delivered without any further write
	select {
	case snap := <-sub.C:
		require.Len(t, snap, 1)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	_, err = store.Create(ctx, "posts", map[string]string{"content": "second"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		select {
		case snap := <-sub.C:
			return len(snap) == 2
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestRedisStore_Subscribe_CancelClosesChannel(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	sub, err := store.Subscribe(context.Background(), "posts", nil, nil)
	require.NoError(t, err)

	<-sub.C // drain initial snapshot
	sub.Cancel()
	sub.Cancel() // idempotent

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
