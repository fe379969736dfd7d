package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/garnizeh/joboffers/internal/offers"
	"github.com/garnizeh/joboffers/internal/validation"
	"github.com/garnizeh/joboffers/pkg/models"
)

const (
	msgUnauthorized  = "Unauthorized"
	msgInvalidUserID = "Invalid user id"
	msgNoOffers      = "No offers to show"
)

type OffersHandler struct {
	svc *offers.Service
}

func NewOffersHandler(svc *offers.Service) *OffersHandler {
	return &OffersHandler{svc: svc}
}

type listOffersResponse struct {
	Offers []models.Offer `json:"offers"`
	Count  int            `json:"count"`
}

func offerNotFound(id int64) string {
	return fmt.Sprintf("offer not found %d", id)
}

// fail maps service errors onto responses; notFound is the message used for
// offers.ErrNotFound.
func (h *OffersHandler) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *validation.Error
	switch {
	case errors.Is(err, offers.ErrNoInput):
		writeMessage(w, http.StatusBadRequest, msgNoInput)
	case errors.Is(err, offers.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
	case errors.As(err, &verr):
		writeJSON(w, verr, http.StatusBadRequest)
	case errors.Is(err, offers.ErrInvalidOwner):
		writeMessage(w, http.StatusBadRequest, msgInvalidUserID)
	case errors.Is(err, offers.ErrNotFound):
		writeMessage(w, http.StatusNotFound, notFound)
	default:
		logger.Error("offer request failed", slog.Any("err", err), slog.String("method", r.Method), slog.String("path", r.URL.Path))
		writeMessage(w, http.StatusInternalServerError, msgInternal)
	}
}

// caller returns the identity attached by the auth gate.
func caller(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	u, ok := IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, msgInvalidToken)
	}
	return u, ok
}

func (h *OffersHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "user_id")
	if !ok {
		writeMessage(w, http.StatusNotFound, msgNoOffers)
		return
	}

	list, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err, msgNoOffers)
		return
	}

	writeJSON(w, listOffersResponse{Offers: list, Count: len(list)}, http.StatusOK)
}

func (h *OffersHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(r, "user_id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, msgInvalidUserID)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgNoInput)
		return
	}

	o, err := h.svc.Create(r.Context(), u, userID, body)
	if err != nil {
		h.fail(w, r, err, msgInvalidUserID)
		return
	}

	writeJSON(w, o, http.StatusCreated)
}

func (h *OffersHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, okUser := pathID(r, "user_id")
	id, okID := pathID(r, "id")
	if !okUser || !okID {
		writeMessage(w, http.StatusNotFound, offerNotFound(id))
		return
	}

	o, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		h.fail(w, r, err, offerNotFound(id))
		return
	}

	writeJSON(w, o, http.StatusOK)
}

func (h *OffersHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	userID, okUser := pathID(r, "user_id")
	id, okID := pathID(r, "id")
	if !okUser || !okID {
		writeMessage(w, http.StatusNotFound, msgInvalidUserID)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgNoInput)
		return
	}

	o, err := h.svc.Update(r.Context(), u, userID, id, body)
	if err != nil {
		h.fail(w, r, err, msgInvalidUserID)
		return
	}

	writeJSON(w, o, http.StatusOK)
}

func (h *OffersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	userID, okUser := pathID(r, "user_id")
	id, okID := pathID(r, "id")
	if !okUser || !okID {
		writeMessage(w, http.StatusNotFound, offerNotFound(id))
		return
	}

	if err := h.svc.Delete(r.Context(), u, userID, id); err != nil {
		h.fail(w, r, err, offerNotFound(id))
		return
	}

	writeMessage(w, http.StatusOK, fmt.Sprintf("offer deleted %d", id))
}
