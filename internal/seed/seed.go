// Package seed populates the store with demo accounts and activity. All
// writes go through the regular services so the denormalized counters and
// name copies end up exactly as real traffic would leave them.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"pulse/internal/auth"
	"pulse/internal/feed"
	"pulse/internal/models"
)

// Password every demo account gets; the emails are logged on creation.
const DemoPassword = "password123"

type Seeder struct {
	Auth     *auth.Service
	Profiles *feed.ProfileService
	Posts    *feed.PostService
	Comments *feed.CommentService
	Likes    *feed.LikeService
	Log      *slog.Logger
}

// Run creates users demo accounts, postsPerUser posts each, and a spread of
// likes and comments across them.
func (s *Seeder) Run(ctx context.Context, users, postsPerUser int) error {
	if s.Log == nil {
		s.Log = slog.Default()
	}
	gofakeit.Seed(time.Now().UnixNano())

	accounts := make([]*models.User, 0, users)
	for i := 0; i < users; i++ {
		email := fmt.Sprintf("%s%d@example.com", gofakeit.Username(), i)
		principalID, err := s.Auth.SignUp(ctx, email, DemoPassword)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", email, err)
		}
		user, err := s.Profiles.CreateProfile(ctx, principalID, gofakeit.Name(), gofakeit.JobTitle())
		if err != nil {
			return fmt.Errorf("seed profile %s: %w", email, err)
		}
		accounts = append(accounts, user)
		s.Log.Info("seeded account", slog.String("email", email), slog.String("name", user.Name))
	}

	var posts []*models.Post
	for _, account := range accounts {
		for i := 0; i < postsPerUser; i++ {
			post, err := s.Posts.CreatePost(ctx, feed.CreatePostInput{
				AuthorID:   account.ID,
				AuthorName: account.Name,
				Content:    gofakeit.Sentence(12),
			})
			if err != nil {
				return fmt.Errorf("seed post: %w", err)
			}
			posts = append(posts, post)
		}
	}

	for _, post := range posts {
		for _, account := range accounts {
			if account.ID == post.AuthorID {
				continue
			}
			if rand.Intn(2) == 0 {
				if _, err := s.Likes.AddLike(ctx, account.ID, post.ID); err != nil {
					return fmt.Errorf("seed like: %w", err)
				}
			}
			if rand.Intn(3) == 0 {
				_, err := s.Comments.AddComment(ctx, feed.AddCommentInput{
					PostID:     post.ID,
					AuthorID:   account.ID,
					AuthorName: account.Name,
					Content:    gofakeit.Sentence(8),
				})
				if err != nil {
					return fmt.Errorf("seed comment: %w", err)
				}
			}
		}
	}

	s.Log.Info("seeding complete",
		slog.Int("accounts", len(accounts)),
		slog.Int("posts", len(posts)))
	return nil
}
