package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/garnizeh/joboffers/internal/token"
	"github.com/garnizeh/joboffers/pkg/models"
	"github.com/garnizeh/joboffers/pkg/repository"
)

type ctxKey string

const ctxIdentity ctxKey = "identity"

var errUnknownUser = errors.New("token subject does not exist")

// WithIdentity returns a copy of ctx carrying the authenticated user.
func WithIdentity(ctx context.Context, u models.User) context.Context {
	u.PasswordHash = ""
	return context.WithValue(ctx, ctxIdentity, u)
}

// IdentityFromContext returns the user attached by JWTAuthMiddleware.
func IdentityFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(ctxIdentity).(models.User)
	return u, ok
}

// resolveIdentity verifies tok and loads the user it names. Panics raised
// while parsing are reported as errors.
func resolveIdentity(r *http.Request, tokens *token.Service, users repository.UserRepo, tok string) (u models.User, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", token.ErrInvalidToken, p)
		}
	}()

	claims, err := tokens.Verify(tok)
	if err != nil {
		return models.User{}, err
	}

	found, err := users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		return models.User{}, fmt.Errorf("lookup user %d: %w", claims.UserID, err)
	}
	if found == nil {
		return models.User{}, fmt.Errorf("%w: %d", errUnknownUser, claims.UserID)
	}

	return *found, nil
}
