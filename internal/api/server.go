package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"corridor_dispatch/internal/auth"
	"corridor_dispatch/internal/models"
	"corridor_dispatch/internal/priority"
	"corridor_dispatch/internal/sim"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 64 * 1024

type Server struct {
	engine *sim.Engine
	auth   *auth.Authenticator
}

// New constructs the HTTP router wired to the simulation engine. Mutating
// routes go through authn when authn is enabled.
func New(engine *sim.Engine, authn *auth.Authenticator) http.Handler {
	s := &Server{engine: engine, auth: authn}
	if s.auth == nil {
		s.auth = auth.New("")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/state", s.handleState)
	r.Get("/trains", s.handleTrains)
	r.Get("/trains/{number}", s.handleTrain)
	r.Get("/recommendations", s.handleRecommendations)
	r.Get("/events", s.handleEvents)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/weights", s.handleWeights)
	r.Get("/scenarios", s.handleScenarios)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)
		r.Post("/tick", s.handleTick)
		r.Post("/sim/start", s.handleSimStart)
		r.Post("/sim/pause", s.handleSimPause)
		r.Post("/sim/toggle", s.handleSimToggle)
		r.Post("/sim/reset", s.handleSimReset)
		r.Put("/weights", s.handleSetWeights)
		r.Post("/recommendations/{id}/accept", s.handleAccept)
		r.Post("/recommendations/{id}/override", s.handleOverride)
		r.Post("/scenarios/{kind}", s.handleScenario)
	})

	return r
}

type decisionResponse struct {
	Recommendation models.Recommendation `json:"recommendation"`
	State          models.SimState       `json:"state"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.State())
}

func (s *Server) handleTrains(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Trains())
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	t, ok := s.engine.TrainByNumber(number)
	if !ok {
		respondError(w, http.StatusNotFound, "train "+number+" not found")
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Recommendations())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.EventLog())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Metrics())
}

func (s *Server) handleWeights(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Weights())
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, sim.Scenarios())
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	s.engine.Tick()
	respondJSON(w, http.StatusOK, s.engine.State())
}

func (s *Server) handleSimStart(w http.ResponseWriter, r *http.Request) {
	s.engine.StartSimulation()
	respondJSON(w, http.StatusOK, s.engine.State())
}

func (s *Server) handleSimPause(w http.ResponseWriter, r *http.Request) {
	s.engine.StopSimulation()
	respondJSON(w, http.StatusOK, s.engine.State())
}

func (s *Server) handleSimToggle(w http.ResponseWriter, r *http.Request) {
	s.engine.ToggleSimulation()
	respondJSON(w, http.StatusOK, s.engine.State())
}

func (s *Server) handleSimReset(w http.ResponseWriter, r *http.Request) {
	s.engine.ResetToBaseline()
	respondJSON(w, http.StatusOK, s.engine.State())
}

// handleSetWeights applies a full or partial weights document on top of
// the current weights.
func (s *Server) handleSetWeights(w http.ResponseWriter, r *http.Request) {
	weights := s.engine.Weights()
	if err := decodeJSON(w, r, &weights); err != nil {
		respondError(w, http.StatusBadRequest, "bad request: "+err.Error())
		return
	}
	if err := s.engine.SetPriorityWeights(weights); err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.engine.Weights())
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	rec, err := s.engine.AcceptRecommendation(chi.URLParam(r, "id"), operatorFor(r))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, decisionResponse{Recommendation: rec, State: s.engine.State()})
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	rec, err := s.engine.OverrideRecommendation(chi.URLParam(r, "id"), operatorFor(r))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, decisionResponse{Recommendation: rec, State: s.engine.State()})
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	kind := models.ScenarioKind(chi.URLParam(r, "kind"))
	if err := s.engine.ApplyScenario(kind); err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.engine.State())
}

// ===== helpers =====

// operatorFor prefers the authenticated subject and falls back to the
// X-Operator header when auth is disabled.
func operatorFor(r *http.Request) string {
	if op := auth.OperatorFromContext(r.Context()); op != "" {
		return op
	}
	return r.Header.Get("X-Operator")
}

func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sim.ErrRecommendationNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sim.ErrTrainCompleted), errors.Is(err, sim.ErrTrainNotFound):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, priority.ErrInvalidWeights), errors.Is(err, sim.ErrUnknownScenario):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[api] unexpected engine error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	respondJSON(w, status, map[string]string{"error": msg})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Operator")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
