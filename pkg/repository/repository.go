package repository

import (
	"context"
	"errors"
	"time"

	"github.com/garnizeh/joboffers/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

var (
	// ErrNotFound is returned by mutating calls whose target row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInvalidOwner is returned when an offer references a user that does not exist.
	ErrInvalidOwner = errors.New("owner does not exist")
)

// UserRepo stores accounts. Get* methods return (nil, nil) when no row matches.
type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// OfferRepo stores offers. Every lookup is scoped by the owning user id.
type OfferRepo interface {
	CreateOffer(ctx context.Context, o *models.Offer) (int64, error)
	GetOffer(ctx context.Context, userID, id int64) (*models.Offer, error)
	ListOffersByUser(ctx context.Context, userID int64) ([]models.Offer, error)
	UpdateOffer(ctx context.Context, userID, id int64, patch models.OfferPatch, modified time.Time) error
	DeleteOffer(ctx context.Context, userID, id int64) error
}
