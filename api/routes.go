package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/joboffers/internal/config"
	"github.com/garnizeh/joboffers/internal/db"
	"github.com/garnizeh/joboffers/internal/offers"
	"github.com/garnizeh/joboffers/internal/password"
	"github.com/garnizeh/joboffers/internal/repository/sqlite"
	"github.com/garnizeh/joboffers/internal/token"
	"github.com/garnizeh/joboffers/internal/users"
)

// APIRoot prefixes every versioned endpoint.
const APIRoot = "/api/v1"

func SetupRoutes(cfg *config.Config, version, buildTime string, database *db.DB) (*mux.Router, error) {
	hasher, err := password.New(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	// Repository
	repo := sqlite.New(database, logger)

	tokens := token.NewService([]byte(cfg.JWTSecret), cfg.TokenDuration)

	// Create handlers
	systemHandler := &SystemHandler{DB: database}
	usersHandler := NewUsersHandler(users.NewService(repo, hasher, tokens, logger))
	offersHandler := NewOffersHandler(offers.NewService(repo, offers.WithLogger(logger)))

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods(http.MethodGet)
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods(http.MethodGet)

	v1 := r.PathPrefix(APIRoot).Subrouter()
	v1.HandleFunc("/users/register", usersHandler.Register).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/users/login", usersHandler.Login).Methods(http.MethodPost, http.MethodOptions)

	// Offer endpoints, all behind the auth gate
	auth := JWTAuthMiddleware(tokens, repo)
	offersV1 := v1.PathPrefix("/users/{user_id:[0-9]+}/offers").Subrouter()
	offersV1.Use(auth)
	offersV1.HandleFunc("/", offersHandler.List).Methods(http.MethodGet)
	offersV1.HandleFunc("/", offersHandler.Create).Methods(http.MethodPost)
	offersV1.HandleFunc("/{id:[0-9]+}", offersHandler.Get).Methods(http.MethodGet)
	offersV1.HandleFunc("/{id:[0-9]+}", offersHandler.Update).Methods(http.MethodPut)
	offersV1.HandleFunc("/{id:[0-9]+}", offersHandler.Delete).Methods(http.MethodDelete)

	// collection without the trailing slash
	v1.Handle("/users/{user_id:[0-9]+}/offers", auth(http.HandlerFunc(offersHandler.List))).Methods(http.MethodGet)
	v1.Handle("/users/{user_id:[0-9]+}/offers", auth(http.HandlerFunc(offersHandler.Create))).Methods(http.MethodPost)

	return r, nil
}
