package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"pulse/internal/middleware"
	"pulse/internal/models"
)

func statusFor(err error) int {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "VALIDATION_ERROR":
			return fiber.StatusBadRequest
		case "UNAUTHORIZED":
			return fiber.StatusUnauthorized
		case "NOT_FOUND":
			return fiber.StatusNotFound
		case "CONFLICT":
			return fiber.StatusConflict
		}
	}
	return fiber.StatusInternalServerError
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Title    string `json:"title"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}

	principalID, err := s.auth.SignUp(c.Context(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}

	user, err := s.profiles.CreateProfile(c.Context(), principalID, req.Name, req.Title)
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}

	token, err := s.auth.Token(principalID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	principalID, err := s.auth.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}

	user, err := s.profiles.GetProfile(c.Context(), principalID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	token, err := s.auth.Token(principalID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// RequestPasswordReset handles POST /api/auth/reset-password. The reset
// token is logged rather than mailed; wiring a mailer is a deployment
// concern, not an API one. The response does not reveal whether the
// account exists.
func (s *Server) RequestPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	token, err := s.auth.RequestPasswordReset(c.Context(), req.Email)
	if err == nil {
		middleware.Logger.Info("password reset requested",
			slog.String("email", req.Email),
			slog.String("reset_token", token))
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// ConfirmPasswordReset handles POST /api/auth/reset-password/confirm
func (s *Server) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email       string `json:"email"`
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.auth.ResetPassword(c.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
