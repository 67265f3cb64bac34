// Package service contains the business logic layer: validation, slug
// derivation and orchestration between the HTTP handlers and the
// repositories. Services accept plain values and return domain errors from
// internal/apperror; they know nothing about HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/auth"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

// Validation limits for registration, matching the users table schema.
const (
	MaxNameLength     = 255
	MaxEmailLength    = 255
	MinPasswordLength = 8
)

// AuthService handles registration, login and token-to-user resolution.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger

	// dummyHash is compared against when a login's email is unknown, so the
	// two failure paths cost about the same and timing does not reveal
	// whether an account exists.
	dummyHash string
}

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	dummy, _ := passwords.Hash("not-a-real-password")
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
		dummyHash: dummy,
	}
}

// RegisterInput is the payload accepted by Register.
type RegisterInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Register validates the input, hashes the password and creates the account.
//
// All field failures are collected into a single validation error (one list
// of messages per field) rather than bailing on the first, so the caller sees
// everything wrong with the submission at once. A duplicate email is reported
// the same way whether it is caught by the pre-check or by the UNIQUE
// constraint when two registrations race.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	fields := map[string][]string{}
	addErr := func(field, msg string) {
		fields[field] = append(fields[field], msg)
	}

	if in.Name == "" {
		addErr("name", "The name field is required.")
	} else if len(in.Name) > MaxNameLength {
		addErr("name", fmt.Sprintf("The name may not be greater than %d characters.", MaxNameLength))
	}

	switch {
	case in.Email == "":
		addErr("email", "The email field is required.")
	case len(in.Email) > MaxEmailLength:
		addErr("email", fmt.Sprintf("The email may not be greater than %d characters.", MaxEmailLength))
	case !validEmail(in.Email):
		addErr("email", "The email must be a valid email address.")
	default:
		// Pre-check for a friendly error; the UNIQUE constraint remains the
		// authority if a concurrent registration slips between here and the
		// insert.
		if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
			addErr("email", "The email has already been taken.")
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: checking email: %w", err)
		}
	}

	switch {
	case in.Password == "":
		addErr("password", "The password field is required.")
	case len(in.Password) < MinPasswordLength:
		addErr("password", fmt.Sprintf("The password must be at least %d characters.", MinPasswordLength))
	}
	if in.Password != in.PasswordConfirmation {
		addErr("password", "The password confirmation does not match.")
	}

	if len(fields) > 0 {
		return nil, apperror.ValidationErrors(fields)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// Lost the race against a concurrent registration.
			return nil, apperror.ValidationFailed("email", "The email has already been taken.")
		}
		s.logger.Error("failed to create user",
			slog.String("email", in.Email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login verifies the credentials and mints a bearer token for the account.
//
// Unknown email and wrong password both return the identical Unauthorized
// error; the response gives an attacker no way to tell which it was. The
// bcrypt comparison runs even when the email is unknown so the two paths
// cost about the same.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Burn a comparison against the dummy hash to keep timing flat.
			_ = s.passwords.Verify(s.dummyHash, password)
			return "", apperror.Unauthorized()
		}
		return "", fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.Password, password); err != nil {
		return "", apperror.Unauthorized()
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))

	return token, nil
}

// GetUserByID returns the account for the given id.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %d: %w", id, err)
	}
	return user, nil
}

// validEmail reports whether addr parses as a bare RFC 5322 address
// (no display name).
func validEmail(addr string) bool {
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Address == addr
}
