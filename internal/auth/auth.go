// Package auth issues and verifies principals. Credentials live in their
// own store collection keyed by normalized email; passwords are bcrypt
// hashed and sessions are stateless JWTs. The rest of the application only
// ever consumes the principal id this package stamps into a token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pulse/internal/docstore"
	"pulse/internal/models"
)

// DefaultTokenTTL applies when no TTL is configured.
const DefaultTokenTTL = 24 * time.Hour

// resetTokenTTL bounds password-reset tokens.
const resetTokenTTL = 15 * time.Minute

// Service authenticates users against the credentials collection.
type Service struct {
	store    docstore.Store
	secret   []byte
	tokenTTL time.Duration
}

func NewService(store docstore.Store, secret string, tokenTTL time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("auth: JWT secret not configured")
	}
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Service{store: store, secret: []byte(secret), tokenTTL: tokenTTL}, nil
}

func credentialKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a credential and returns the new principal id. The
// credential document is created with a compare-and-set on the normalized
// email, so a duplicate registration loses the race cleanly.
func (s *Service) SignUp(ctx context.Context, email, password string) (string, error) {
	key := credentialKey(email)
	if key == "" || !strings.Contains(key, "@") {
		return "", models.NewValidationError("A valid email is required")
	}
	if len(password) < 8 {
		return "", models.NewValidationError("Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	userID := uuid.NewString()
	created, err := s.store.CreateAt(ctx, docstore.Credentials, key, map[string]string{
		"userId":       userID,
		"passwordHash": string(hash),
	})
	if err != nil {
		return "", err
	}
	if !created {
		return "", models.NewConflictError("User already exists")
	}
	return userID, nil
}

// SignIn verifies the password and returns the principal id.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, error) {
	doc, err := s.store.Get(ctx, docstore.Credentials, credentialKey(email))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return "", models.NewUnauthorizedError("Invalid credentials")
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword(
		[]byte(doc.Fields["passwordHash"]), []byte(password)); err != nil {
		return "", models.NewUnauthorizedError("Invalid credentials")
	}
	return doc.Fields["userId"], nil
}

// Token issues a session JWT for the principal.
func (s *Service) Token(userID string) (string, error) {
	return s.signed(userID, "session", s.tokenTTL)
}

// Parse validates a session token and returns the principal id.
func (s *Service) Parse(token string) (string, error) {
	return s.parse(token, "session")
}

// RequestPasswordReset issues a short-lived reset token for the account,
// or an unauthorized error when no such account exists. Delivering the
// token to the user (mail or otherwise) is the caller's concern.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	doc, err := s.store.Get(ctx, docstore.Credentials, credentialKey(email))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return "", models.NewUnauthorizedError("No account for that email")
		}
		return "", err
	}
	return s.signed(doc.Fields["userId"], "reset", resetTokenTTL)
}

// ResetPassword consumes a reset token and stores the new password hash.
func (s *Service) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	userID, err := s.parse(token, "reset")
	if err != nil {
		return err
	}
	key := credentialKey(email)
	doc, err := s.store.Get(ctx, docstore.Credentials, key)
	if err != nil {
		return err
	}
	if doc.Fields["userId"] != userID {
		return models.NewUnauthorizedError("Reset token does not match the account")
	}
	if len(newPassword) < 8 {
		return models.NewValidationError("Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.store.Update(ctx, docstore.Credentials, key, map[string]string{
		"passwordHash": string(hash),
	})
}

func (s *Service) signed(userID, scope string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"scope": scope,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) parse(raw, scope string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", models.NewUnauthorizedError("Invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", models.NewUnauthorizedError("Invalid token claims")
	}
	if claims["scope"] != scope {
		return "", models.NewUnauthorizedError("Invalid token scope")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", models.NewUnauthorizedError("Invalid token subject")
	}
	return sub, nil
}
