package api

import (
	"context"
	"log/slog"
	"net/http"
)

// Pinger is satisfied by the database wrapper.
type Pinger interface {
	Ping(ctx context.Context) error
}

type SystemHandler struct {
	DB Pinger
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type versionResponse struct {
	Version   string `json:"version"`
	BuildTime string `json:"buildTime"`
}

func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			logger.Error("health check failed", slog.Any("err", err))
			writeJSON(w, healthResponse{Status: "unavailable", Service: "joboffers"}, http.StatusServiceUnavailable)
			return
		}
	}

	writeJSON(w, healthResponse{Status: "ok", Service: "joboffers"}, http.StatusOK)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, versionResponse{Version: version, BuildTime: buildTime}, http.StatusOK)
	}
}
