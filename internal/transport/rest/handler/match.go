package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"campusduel/internal/model"
	"campusduel/internal/service"
	"campusduel/internal/transport/rest/middleware"
)

// MatchHandler handles match endpoints
type MatchHandler struct {
	matchSvc *service.MatchService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matchSvc *service.MatchService) *MatchHandler {
	return &MatchHandler{matchSvc: matchSvc}
}

// CreateMatchRequest is the request body for creating a match
type CreateMatchRequest struct {
	DisplayName string              `json:"displayName"`
	Timing      *model.TimingConfig `json:"timing,omitempty"`
	TotalRounds int                 `json:"totalRounds"` // 0 = endless
}

// Create handles POST /v1/matches
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "displayName is required")
		return
	}

	timing := model.TimingConfig{}
	if req.Timing != nil {
		timing = *req.Timing
	}

	resp, err := h.matchSvc.CreateMatch(r.Context(), req.DisplayName, timing, req.TotalRounds)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// JoinRequest is the request body for joining a match
type JoinRequest struct {
	DisplayName string `json:"displayName"`
}

// Join handles POST /v1/matches/{id}/join
func (h *MatchHandler) Join(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "displayName is required")
		return
	}

	resp, err := h.matchSvc.JoinMatch(r.Context(), matchID, req.DisplayName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /v1/matches/{id}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID, playerID, ok := h.identify(w, r)
	if !ok {
		return
	}

	view, err := h.matchSvc.GetView(r.Context(), matchID, playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Start handles POST /v1/matches/{id}/start
func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	matchID, playerID, ok := h.identify(w, r)
	if !ok {
		return
	}

	view, err := h.matchSvc.StartMatch(r.Context(), matchID, playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GuessRequest is the request body for submitting a guess
type GuessRequest struct {
	Location *model.Point `json:"location"`
	Floor    *int         `json:"floor,omitempty"`
}

// Guess handles POST /v1/matches/{id}/guess
func (h *MatchHandler) Guess(w http.ResponseWriter, r *http.Request) {
	matchID, playerID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req GuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Location == nil {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}

	view, err := h.matchSvc.SubmitGuess(r.Context(), matchID, playerID, req.Location, req.Floor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Advance handles POST /v1/matches/{id}/advance
func (h *MatchHandler) Advance(w http.ResponseWriter, r *http.Request) {
	matchID, playerID, ok := h.identify(w, r)
	if !ok {
		return
	}

	view, err := h.matchSvc.AdvanceRound(r.Context(), matchID, playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Leave handles POST /v1/matches/{id}/leave
func (h *MatchHandler) Leave(w http.ResponseWriter, r *http.Request) {
	matchID, playerID, ok := h.identify(w, r)
	if !ok {
		return
	}

	view, err := h.matchSvc.LeaveMatch(r.Context(), matchID, playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Heartbeat handles POST /v1/matches/{id}/heartbeat
func (h *MatchHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	matchID, playerID, ok := h.identify(w, r)
	if !ok {
		return
	}

	if err := h.matchSvc.Heartbeat(r.Context(), matchID, playerID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// identify resolves the caller from the token and checks it is scoped to
// the match in the path.
func (h *MatchHandler) identify(w http.ResponseWriter, r *http.Request) (matchID, playerID string, ok bool) {
	matchID = mux.Vars(r)["id"]
	playerID = middleware.GetPlayerID(r.Context())
	if playerID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", "", false
	}
	if tokenMatch := middleware.GetMatchID(r.Context()); tokenMatch != matchID {
		writeError(w, http.StatusForbidden, "token not valid for this match")
		return "", "", false
	}
	return matchID, playerID, true
}

// writeServiceError maps the invalid-command taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotInMatch):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotHost):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrMatchFull),
		errors.Is(err, service.ErrWrongPhase),
		errors.Is(err, service.ErrLobbyNotReady),
		errors.Is(err, service.ErrRoundClosed),
		errors.Is(err, service.ErrAlreadyGuessed),
		errors.Is(err, service.ErrCatalogExhausted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
