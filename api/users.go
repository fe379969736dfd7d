package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/garnizeh/joboffers/internal/users"
	"github.com/garnizeh/joboffers/internal/validation"
)

// maxBodyBytes caps request bodies read by the handlers.
const maxBodyBytes = 1 << 20

const (
	msgNoInput            = "No input data provided"
	msgNoCredentials      = "No username/password provided"
	msgInvalidCredentials = "Invalid username/password"
)

type UsersHandler struct {
	svc *users.Service
}

// NewUsersHandler creates a new UsersHandler with required dependencies.
func NewUsersHandler(svc *users.Service) *UsersHandler {
	return &UsersHandler{svc: svc}
}

type registerResponse struct {
	Username string `json:"username"`
	ID       int64  `json:"id"`
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgNoInput)
		return
	}

	u, err := h.svc.Register(r.Context(), body)
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.Is(err, users.ErrNoInput):
			writeMessage(w, http.StatusBadRequest, msgNoInput)
		case errors.As(err, &verr):
			writeJSON(w, verr, http.StatusBadRequest)
		default:
			logger.Error("register failed", slog.Any("err", err))
			writeMessage(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	writeJSON(w, registerResponse{Username: u.Username, ID: u.ID}, http.StatusCreated)
}

func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgNoCredentials)
		return
	}

	sess, err := h.svc.Login(r.Context(), body)
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.Is(err, users.ErrNoInput):
			writeMessage(w, http.StatusBadRequest, msgNoCredentials)
		case errors.Is(err, users.ErrInvalidCredentials):
			writeMessage(w, http.StatusBadRequest, msgInvalidCredentials)
		case errors.As(err, &verr):
			writeJSON(w, verr, http.StatusBadRequest)
		default:
			logger.Error("login failed", slog.Any("err", err))
			writeMessage(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	writeJSON(w, sess, http.StatusOK)
}
