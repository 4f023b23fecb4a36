package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"pulse/internal/docstore"
	"pulse/internal/models"
)

// ProfileService edits a user's profile and propagates the display name
// into the denormalized copies carried by that user's posts and comments.
type ProfileService struct {
	store docstore.Store
	log   *slog.Logger
}

func NewProfileService(store docstore.Store, log *slog.Logger) *ProfileService {
	if log == nil {
		log = slog.Default()
	}
	return &ProfileService{store: store, log: log}
}

type UpdateProfileInput struct {
	UserID string
	Name   string
	Title  string
}

// UpdateProfile writes the new name and title to the user document, then
// fans the name out to every post and comment authored by the user. The
// affected set is a query snapshot taken now; each copy is updated
// independently and concurrently, and a failure on one does not block or
// roll back the others. Errors from the profile write and from each fan-out
// write are joined into the returned error; nothing is retried.
func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) error {
	if in.Name == "" {
		return models.NewValidationError("Name is required")
	}

	user := &models.User{ID: in.UserID, Name: in.Name, Title: in.Title}
	if err := s.store.Update(ctx, docstore.Users, in.UserID, user.Fields()); err != nil {
		// Without the profile write there is nothing to propagate.
		return err
	}

	errPosts := s.fanOut(ctx, docstore.Posts, in.UserID, in.Name)
	errComments := s.fanOut(ctx, docstore.Comments, in.UserID, in.Name)
	return errors.Join(errPosts, errComments)
}

// CreateProfile stores the initial profile document at sign-up. The id is
// the authentication principal's id; creating twice for the same id fails.
func (s *ProfileService) CreateProfile(ctx context.Context, userID, name, title string) (*models.User, error) {
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	user := &models.User{ID: userID, Name: name, Title: title}
	created, err := s.store.CreateAt(ctx, docstore.Users, userID, user.Fields())
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, models.NewConflictError("Profile already exists")
	}
	return user, nil
}

// GetProfile fetches a user document.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	doc, err := s.store.Get(ctx, docstore.Users, userID)
	if err != nil {
		return nil, err
	}
	return models.UserFromFields(doc.ID, doc.Fields), nil
}

// fanOut rewrites authorName on every document in the collection authored
// by userID. One goroutine per document; individual failures are collected
// and joined, the rest proceed regardless.
func (s *ProfileService) fanOut(ctx context.Context, collection, userID, name string) error {
	docs, err := s.store.Query(ctx, collection,
		&docstore.Filter{Field: "authorId", Value: userID}, nil)
	if err != nil {
		return err
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, doc := range docs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := s.store.Update(ctx, collection, id, map[string]string{"authorName": name})
			if err != nil {
				s.log.Error("name fan-out write failed",
					slog.String("collection", collection),
					slog.String("doc", id),
					slog.String("error", err.Error()))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(doc.ID)
	}
	wg.Wait()
	return errors.Join(errs...)
}
