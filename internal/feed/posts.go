// Package feed implements the application's write paths over the document
// store (posts, likes, comments, profile propagation) and the live feed
// projection. Every piece of state the package touches is denormalized
// across collections; the services here are the only code allowed to adjust
// the counters, and they do so exclusively through the store's atomic
// increment.
package feed

import (
	"context"
	"time"

	"pulse/internal/docstore"
	"pulse/internal/models"
)

const maxContentLen = 10000

// PostService creates and reads posts.
type PostService struct {
	store docstore.Store
}

func NewPostService(store docstore.Store) *PostService {
	return &PostService{store: store}
}

type CreatePostInput struct {
	AuthorID   string
	AuthorName string
	Content    string
}

// CreatePost stores a new post with zeroed counters and the author's name
// denormalized into it.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}

	post := &models.Post{
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
		Content:    in.Content,
		CreatedAt:  time.Now(),
	}
	id, err := s.store.Create(ctx, docstore.Posts, post.Fields())
	if err != nil {
		return nil, err
	}
	post.ID = id
	return post, nil
}

// GetPost returns a single post by id.
func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	doc, err := s.store.Get(ctx, docstore.Posts, postID)
	if err != nil {
		return nil, err
	}
	return models.PostFromFields(doc.ID, doc.Fields), nil
}

// ListByAuthor returns the author's posts, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	docs, err := s.store.Query(ctx, docstore.Posts,
		&docstore.Filter{Field: "authorId", Value: authorID},
		&docstore.Order{Field: "createdAt", Desc: true})
	if err != nil {
		return nil, err
	}
	posts := make([]*models.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, models.PostFromFields(d.ID, d.Fields))
	}
	return posts, nil
}
