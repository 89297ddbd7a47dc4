package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"campusduel/internal/service"
	"campusduel/internal/transport/rest/handler"
	"campusduel/internal/transport/rest/middleware"
	"campusduel/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService  *service.AuthService
	MatchService *service.MatchService
	WSHub        *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	matchHandler := handler.NewMatchHandler(c.MatchService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.MatchService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes: creating and joining issue the match-scoped token.
	v1.HandleFunc("/matches", matchHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/matches/{id}/join", matchHandler.Join).Methods("POST", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/matches/{id}", wsHandler.MatchWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player routes (require match-scoped auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/matches/{id}", matchHandler.Get).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/matches/{id}/start", matchHandler.Start).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/matches/{id}/guess", matchHandler.Guess).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/matches/{id}/advance", matchHandler.Advance).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/matches/{id}/leave", matchHandler.Leave).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/matches/{id}/heartbeat", matchHandler.Heartbeat).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
