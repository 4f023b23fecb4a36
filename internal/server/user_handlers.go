package server

import (
	"github.com/gofiber/fiber/v2"

	"pulse/internal/feed"
	"pulse/internal/models"
)

// GetMyProfile handles GET /api/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.profiles.GetProfile(c.Context(), userID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("user", userID(c)))
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/me. The name change propagates to every
// post and comment the user has authored; copies that fail to update are
// reported but do not undo the rest.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	err := s.profiles.UpdateProfile(c.Context(), feed.UpdateProfileInput{
		UserID: userID(c),
		Name:   req.Name,
		Title:  req.Title,
	})
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}

	user, err := s.profiles.GetProfile(c.Context(), userID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(user)
}
