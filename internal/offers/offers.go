// Package offers implements the owner-scoped offer operations. Any
// authenticated caller may read a user's offers; only that user may create,
// change or delete them.
package offers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/garnizeh/joboffers/internal/validation"
	"github.com/garnizeh/joboffers/pkg/models"
	"github.com/garnizeh/joboffers/pkg/repository"
)

var (
	ErrNoInput      = errors.New("no input data provided")
	ErrUnauthorized = errors.New("caller does not own the offers")
	ErrNotFound     = errors.New("offer not found")
	ErrInvalidOwner = errors.New("owner does not exist")
)

type Service struct {
	repo   repository.OfferRepo
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for offer timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(repo repository.OfferRepo, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type createRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	SkillsList  []string `json:"skills_list"`
}

// List returns every offer of userID. A user without offers yields ErrNotFound.
func (s *Service) List(ctx context.Context, userID int64) ([]models.Offer, error) {
	list, err := s.repo.ListOffersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list offers of user %d: %w", userID, err)
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}

	return list, nil
}

// Get returns offer id of userID.
func (s *Service) Get(ctx context.Context, userID, id int64) (*models.Offer, error) {
	o, err := s.repo.GetOffer(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get offer %d: %w", id, err)
	}
	if o == nil {
		return nil, ErrNotFound
	}

	return o, nil
}

// Create stores a new offer for userID from a JSON body. Only userID itself
// may create its offers.
func (s *Service) Create(ctx context.Context, caller models.User, userID int64, body []byte) (*models.Offer, error) {
	if validation.IsEmpty(body) {
		return nil, ErrNoInput
	}
	if caller.ID != userID {
		return nil, ErrUnauthorized
	}
	if err := validation.OfferCreate.Validate(ctx, body); err != nil {
		return nil, err
	}

	var req createRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, validation.FieldError(validation.SchemaKey, validation.MsgInvalidInput)
	}

	ts := s.timestamp()
	o := &models.Offer{
		UserID:           userID,
		Title:            req.Title,
		Description:      req.Description,
		SkillsList:       req.SkillsList,
		CreationDate:     ts,
		ModificationDate: ts,
	}

	id, err := s.repo.CreateOffer(ctx, o)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidOwner) {
			return nil, ErrInvalidOwner
		}
		return nil, fmt.Errorf("create offer: %w", err)
	}

	s.logger.Info("offer created", slog.Int64("offer_id", id), slog.Int64("user_id", userID))

	created, err := s.repo.GetOffer(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("reload offer %d: %w", id, err)
	}
	if created == nil {
		return nil, fmt.Errorf("reload offer %d: %w", id, repository.ErrNotFound)
	}

	return created, nil
}

// Update writes the fields present in the JSON body to offer id and always
// advances its modification date. Fields absent from the body are never
// written.
func (s *Service) Update(ctx context.Context, caller models.User, userID, id int64, body []byte) (*models.Offer, error) {
	if validation.IsEmpty(body) {
		return nil, ErrNoInput
	}
	if caller.ID != userID {
		return nil, ErrUnauthorized
	}

	o, err := s.repo.GetOffer(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get offer %d: %w", id, err)
	}
	if o == nil {
		return nil, ErrNotFound
	}

	if err := validation.OfferUpdate.Validate(ctx, body); err != nil {
		return nil, err
	}

	var patch models.OfferPatch
	if err := json.Unmarshal(body, &patch); err != nil {
		return nil, validation.FieldError(validation.SchemaKey, validation.MsgInvalidInput)
	}

	if patch.Empty() {
		s.logger.Debug("offer update sets no fields", slog.Int64("offer_id", id))
	}

	err = s.repo.UpdateOffer(ctx, userID, id, patch, s.nextModification(o.ModificationDate))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update offer %d: %w", id, err)
	}

	// read back the row the store holds, including concurrent writes to other fields
	o, err = s.repo.GetOffer(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get offer %d: %w", id, err)
	}
	if o == nil {
		return nil, ErrNotFound
	}

	s.logger.Info("offer updated", slog.Int64("offer_id", id), slog.Int64("user_id", userID))
	return o, nil
}

// Delete removes offer id. Ownership is checked before existence, so a
// foreign caller gets ErrUnauthorized even for missing offers.
func (s *Service) Delete(ctx context.Context, caller models.User, userID, id int64) error {
	if caller.ID != userID {
		return ErrUnauthorized
	}

	if err := s.repo.DeleteOffer(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete offer %d: %w", id, err)
	}

	s.logger.Info("offer deleted", slog.Int64("offer_id", id), slog.Int64("user_id", userID))
	return nil
}

// timestamp is the current time at the precision the store keeps.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// nextModification never returns a time at or before prev.
func (s *Service) nextModification(prev time.Time) time.Time {
	next := s.timestamp()
	if !next.After(prev) {
		next = prev.Add(time.Microsecond)
	}
	return next
}
