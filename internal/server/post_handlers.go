package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pulse/internal/docstore"
	"pulse/internal/feed"
	"pulse/internal/models"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	// Authors write their current display name into the post.
	author, err := s.profiles.GetProfile(c.Context(), userID(c))
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}

	post, err := s.posts.CreatePost(c.Context(), feed.CreatePostInput{
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Content:    req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetFeed handles GET /api/feed with the projector's latest ordered snapshot.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	posts := s.state.Posts()
	if posts == nil {
		posts = []*models.Post{}
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.posts.GetPost(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("post", c.Params("id")))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(post)
}

// LikePost handles POST /api/posts/:id/like. Registering an existing like
// is not an error: liked=false says the pair was already counted.
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID := c.Params("id")

	liked, err := s.likes.AddLike(c.Context(), userID(c), postID)
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}

	post, err := s.posts.GetPost(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"liked":      liked,
		"like_count": post.LikeCount,
	})
}

// AddComment handles POST /api/posts/:id/comments
func (s *Server) AddComment(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	author, err := s.profiles.GetProfile(c.Context(), userID(c))
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}

	comment, err := s.comments.AddComment(c.Context(), feed.AddCommentInput{
		PostID:     c.Params("id"),
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Content:    req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	comments, err := s.comments.ListComments(c.Context(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(comments)
}
