// Package users handles account registration and login.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/garnizeh/joboffers/internal/password"
	"github.com/garnizeh/joboffers/internal/token"
	"github.com/garnizeh/joboffers/internal/validation"
	"github.com/garnizeh/joboffers/pkg/models"
	"github.com/garnizeh/joboffers/pkg/repository"
)

var (
	ErrNoInput            = errors.New("no input data provided")
	ErrInvalidCredentials = errors.New("invalid username/password")
)

type Service struct {
	repo   repository.UserRepo
	hasher password.Hasher
	tokens *token.Service
	logger *slog.Logger
}

func NewService(repo repository.UserRepo, hasher password.Hasher, tokens *token.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{repo: repo, hasher: hasher, tokens: tokens, logger: logger}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is returned by a successful login.
type Session struct {
	ID    int64  `json:"id"`
	Token string `json:"token"`
}

func decodeCredentials(ctx context.Context, body []byte) (*credentials, error) {
	if validation.IsEmpty(body) {
		return nil, ErrNoInput
	}
	if err := validation.Credentials.Validate(ctx, body); err != nil {
		return nil, err
	}

	var c credentials
	if err := json.Unmarshal(body, &c); err != nil {
		return nil, validation.FieldError(validation.SchemaKey, validation.MsgInvalidInput)
	}
	return &c, nil
}

// Register creates an account from a {username, password} body. The password
// digest is computed once here and never returned.
func (s *Service) Register(ctx context.Context, body []byte) (*models.User, error) {
	c, err := decodeCredentials(ctx, body)
	if err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(c.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Username: c.Username, PasswordHash: digest}
	id, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validation.FieldError("username", validation.MsgTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", slog.Int64("user_id", id), slog.String("username", c.Username))
	return &models.User{ID: id, Username: c.Username}, nil
}

// Login checks the credentials in body and issues a token for the account.
func (s *Service) Login(ctx context.Context, body []byte) (*Session, error) {
	c, err := decodeCredentials(ctx, body)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetUserByUsername(ctx, c.Username)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil || !s.hasher.Verify(c.Password, u.PasswordHash) {
		s.logger.Info("login rejected", slog.String("username", c.Username))
		return nil, ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in", slog.Int64("user_id", u.ID), slog.Duration("token_validity", s.tokens.Validity()))
	return &Session{ID: u.ID, Token: tok}, nil
}
