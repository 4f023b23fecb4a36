package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/internal/docstore"
	"pulse/internal/models"
)

func TestLikeService_AddLike_Idempotent(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	post := createPost(t, store, "userA", "Alice", "hello")
	svc := NewLikeService(store)

	liked, err := svc.AddLike(ctx, "userB", post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, getPost(t, store, post.ID).LikeCount)

	// same pair again: no-op, counter untouched
	liked, err = svc.AddLike(ctx, "userB", post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.EqualValues(t, 1, getPost(t, store, post.ID).LikeCount)
}

func TestLikeService_AddLike_DistinctUsers(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	post := createPost(t, store, "userA", "Alice", "hello")
	svc := NewLikeService(store)

	const users = 7
	for i := 0; i < users; i++ {
		liked, err := svc.AddLike(ctx, fmt.Sprintf("user%d", i), post.ID)
		require.NoError(t, err)
		assert.True(t, liked)
	}
	assert.EqualValues(t, users, getPost(t, store, post.ID).LikeCount)
}

func TestLikeService_AddLike_ConcurrentSamePair(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	post := createPost(t, store, "userA", "Alice", "hello")
	svc := NewLikeService(store)

	// All goroutines race the same (user, post) pair past the short-circuit
	// check; the create CAS must let exactly one through to the increment.
	const racers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		errs []error
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			liked, err := svc.AddLike(ctx, "userB", post.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if liked {
				wins++
			}
		}()
	}
	wg.Wait()
	require.Empty(t, errs)

	assert.Equal(t, 1, wins)
	assert.EqualValues(t, 1, getPost(t, store, post.ID).LikeCount)

	docs, err := store.Query(ctx, docstore.Likes, nil, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLikeService_AddLike_PostMissing(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := NewLikeService(store).AddLike(context.Background(), "userB", "ghost")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestLikeService_HasLiked(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	post := createPost(t, store, "userA", "Alice", "hello")
	svc := NewLikeService(store)

	has, err := svc.HasLiked(ctx, "userB", post.ID)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = svc.AddLike(ctx, "userB", post.ID)
	require.NoError(t, err)

	has, err = svc.HasLiked(ctx, "userB", post.ID)
	require.NoError(t, err)
	assert.True(t, has)
}
