package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pulse/internal/docstore"
	"pulse/internal/models"
)

// LikeService registers likes at most once per (user, post) pair and keeps
// the post's like counter in step. The like document's deterministic key is
// the sole source of truth for "has this user liked this post"; the counter
// is a denormalized convenience maintained here.
type LikeService struct {
	store docstore.Store
}

func NewLikeService(store docstore.Store) *LikeService {
	return &LikeService{store: store}
}

// AddLike records userID liking postID. Returns true when a new like was
// registered, false when the pair had already been counted; the false
// path writes nothing. Two concurrent calls for the same pair resolve at
// the store's create compare-and-set: exactly one wins it and increments,
// the other returns false, so the counter cannot over-count.
func (s *LikeService) AddLike(ctx context.Context, userID, postID string) (bool, error) {
	if _, err := s.store.Get(ctx, docstore.Posts, postID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return false, models.NewNotFoundError("post", postID)
		}
		return false, err
	}

	key := models.LikeKey(userID, postID)

	// Cheap short-circuit; correctness does not depend on it.
	if _, err := s.store.Get(ctx, docstore.Likes, key); err == nil {
		return false, nil
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return false, err
	}

	like := &models.Like{Key: key, PostID: postID, UserID: userID, CreatedAt: time.Now()}
	created, err := s.store.CreateAt(ctx, docstore.Likes, key, like.Fields())
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	if _, err := s.store.Increment(ctx, docstore.Posts, postID, "likeCount", 1); err != nil {
		// The like stands but the counter now under-counts it; surfaced to
		// the caller, no compensation is attempted.
		return true, fmt.Errorf("like recorded but counter update failed: %w", err)
	}
	return true, nil
}

// HasLiked reports whether the pair's like document exists.
func (s *LikeService) HasLiked(ctx context.Context, userID, postID string) (bool, error) {
	_, err := s.store.Get(ctx, docstore.Likes, models.LikeKey(userID, postID))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	return false, err
}
