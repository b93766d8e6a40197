package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/internal/rest"
)

var ErrBadCredentials = errors.New("invalid email or password")

type Service interface {
	SignUp(ctx context.Context, email, displayName, password string) (User, string, error)
	SignIn(ctx context.Context, email, password string) (User, string, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetCurrentUser(ctx context.Context) (User, error)
}

type ServiceImpl struct {
	repo     Repo
	secret   string
	tokenTTL time.Duration
}

func NewUserService(repo Repo, secret string, tokenTTL time.Duration) *ServiceImpl {
	return &ServiceImpl{repo: repo, secret: secret, tokenTTL: tokenTTL}
}

// SignUp registers a new user and returns it together with a fresh session token.
func (s *ServiceImpl) SignUp(ctx context.Context, email, displayName, password string) (User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, "", &rest.ValidationError{Field: "email", Message: "a valid email is required"}
	}
	if displayName == "" {
		return User{}, "", &rest.ValidationError{Field: "displayName", Message: "display name is required"}
	}
	if len(password) < 8 {
		return User{}, "", &rest.ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return User{}, "", ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, "", err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
	})
	if err != nil {
		return User{}, "", err
	}
	log.Infof("registered new user %s", created.ID)

	token, err := IssueToken(created.ID, s.secret, s.tokenTTL, time.Now())
	if err != nil {
		return User{}, "", err
	}
	return created, token, nil
}

func (s *ServiceImpl) SignIn(ctx context.Context, email, password string) (User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	found, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, "", ErrBadCredentials
	}
	if err != nil {
		return User{}, "", err
	}

	ok, err := VerifyPassword(password, found.PasswordHash)
	if err != nil {
		return User{}, "", err
	}
	if !ok {
		return User{}, "", ErrBadCredentials
	}

	token, err := IssueToken(found.ID, s.secret, s.tokenTTL, time.Now())
	if err != nil {
		return User{}, "", err
	}
	return found, token, nil
}

func (s *ServiceImpl) GetUser(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.FindByID(ctx, userId)
}
