package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pulse/internal/docstore"
	"pulse/internal/models"
)

// CommentService appends comments and keeps the post's comment counter in
// step. Comments are deliberately not deduplicated: every successful call
// creates a new document.
type CommentService struct {
	store docstore.Store
}

func NewCommentService(store docstore.Store) *CommentService {
	return &CommentService{store: store}
}

type AddCommentInput struct {
	PostID     string
	AuthorID   string
	AuthorName string
	Content    string
}

// AddComment creates the comment document, then increments the post's
// comment counter. If the increment fails the comment stands and the
// counter under-counts it; the error is surfaced, no compensating delete
// is attempted.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}
	if _, err := s.store.Get(ctx, docstore.Posts, in.PostID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, models.NewNotFoundError("post", in.PostID)
		}
		return nil, err
	}

	comment := &models.Comment{
		PostID:     in.PostID,
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
		Content:    in.Content,
		CreatedAt:  time.Now(),
	}
	id, err := s.store.Create(ctx, docstore.Comments, comment.Fields())
	if err != nil {
		return nil, err
	}
	comment.ID = id

	if _, err := s.store.Increment(ctx, docstore.Posts, in.PostID, "commentCount", 1); err != nil {
		return comment, fmt.Errorf("comment recorded but counter update failed: %w", err)
	}
	return comment, nil
}

// ListComments returns a post's comments, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	docs, err := s.store.Query(ctx, docstore.Comments,
		&docstore.Filter{Field: "postId", Value: postID},
		&docstore.Order{Field: "createdAt"})
	if err != nil {
		return nil, err
	}
	comments := make([]*models.Comment, 0, len(docs))
	for _, d := range docs {
		comments = append(comments, models.CommentFromFields(d.ID, d.Fields))
	}
	return comments, nil
}
