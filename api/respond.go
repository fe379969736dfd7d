package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

const msgInternal = "Internal Server Error"

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, messageResponse{Message: msg}, status)
}

// pathID reads a numeric path variable. Routes constrain these to digits, so
// a failure here means the value does not fit an int64.
func pathID(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
