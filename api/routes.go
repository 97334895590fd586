package api

import (
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/audit"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/config"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/db"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/repository/sqlite"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/workflow"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, database *db.DB) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(ActorMiddlewareWithSecret(cfg.JWTSecret))

	// Repository and domain services
	repo := sqlite.New(database, logger)
	recorder := audit.NewRecorder(repo, repo, logger)
	wf := workflow.NewService(repo, repo, repo, recorder, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	usersHandler := NewUsersHandler(repo, recorder)
	tunnelsHandler := NewTunnelsHandler(repo, recorder)
	sensorsHandler := NewSensorsHandler(repo, repo)
	closureHandler := NewClosureRequestsHandler(wf)
	logsHandler := NewOperationsLogsHandler(repo, repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")

	apiRouter := r.PathPrefix("/api").Subrouter()

	// Auth endpoints
	apiRouter.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	apiRouter.HandleFunc("/auth/register", authHandler.Register).Methods("POST")

	// Users endpoints
	apiRouter.HandleFunc("/users", usersHandler.List).Methods("GET")
	apiRouter.HandleFunc("/users", usersHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/users/{id}", usersHandler.Get).Methods("GET")
	apiRouter.HandleFunc("/users/{id}", usersHandler.Update).Methods("PUT")
	apiRouter.HandleFunc("/users/{id}", usersHandler.Delete).Methods("DELETE")

	// Tunnels endpoints
	apiRouter.HandleFunc("/tunnels", tunnelsHandler.List).Methods("GET")
	apiRouter.HandleFunc("/tunnels", tunnelsHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/tunnels/{id}", tunnelsHandler.Get).Methods("GET")
	apiRouter.HandleFunc("/tunnels/{id}", tunnelsHandler.Update).Methods("PUT")
	apiRouter.HandleFunc("/tunnels/{id}", tunnelsHandler.Delete).Methods("DELETE")
	apiRouter.HandleFunc("/tunnels/{id}/guidance-display", tunnelsHandler.UpdateGuidanceDisplay).Methods("PUT")

	// Sensors endpoints
	apiRouter.HandleFunc("/tunnels/{tunnelId}/sensors", sensorsHandler.ListByTunnel).Methods("GET")
	apiRouter.HandleFunc("/sensors", sensorsHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/sensors/{id}", sensorsHandler.Update).Methods("PUT")

	// Closure request endpoints
	apiRouter.HandleFunc("/closure-requests", closureHandler.List).Methods("GET")
	apiRouter.HandleFunc("/closure-requests", closureHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/closure-requests/pending", closureHandler.ListPending).Methods("GET")
	apiRouter.HandleFunc("/closure-requests/{id}", closureHandler.Get).Methods("GET")
	apiRouter.HandleFunc("/closure-requests/{id}", closureHandler.Update).Methods("PUT")
	apiRouter.HandleFunc("/closure-requests/{id}", closureHandler.Delete).Methods("DELETE")
	apiRouter.HandleFunc("/tunnels/{tunnelId}/closure-requests", closureHandler.ListByTunnel).Methods("GET")
	apiRouter.HandleFunc("/users/{userId}/closure-requests", closureHandler.ListByRequester).Methods("GET")

	// Operations log endpoints
	apiRouter.HandleFunc("/operations-logs", logsHandler.List).Methods("GET")
	apiRouter.HandleFunc("/operations-logs", logsHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/operations-logs/entity/{entityId}", logsHandler.ListByEntity).Methods("GET")

	return r
}
