package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type AuthService struct {
	Users  UserRepository
	Events events.Publisher
}

type RegisterInput struct {
	Name     string
	Surname  string
	Email    string
	Address  string
	Password string
	Confirm  string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email := NormalizeEmail(in.Email)
	switch {
	case email == "":
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	case !strings.Contains(email, "@"):
		return nil, fmt.Errorf("%w: email is malformed", ErrValidation)
	case in.Password == "":
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	case in.Password != in.Confirm:
		return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Name:         strings.TrimSpace(in.Name),
		Surname:      strings.TrimSpace(in.Surname),
		Email:        email,
		Address:      strings.TrimSpace(in.Address),
		PasswordHash: pwHash,
	}
	if err := s.Users.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, err
	}

	events.Publish(ctx, s.Events, l, events.TopicUsers, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})
	return &user, nil
}

// Login checks credentials. Unknown email and wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrAuth)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrAuth)
	}

	events.Publish(ctx, s.Events, l, events.TopicUsers, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})
	return user, nil
}

func (s *AuthService) User(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}
