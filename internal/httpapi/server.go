package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/enotara/mira/internal/config"
	"github.com/enotara/mira/internal/memory"
	"github.com/enotara/mira/internal/observability"
	"github.com/enotara/mira/internal/reply"
)

type Server struct {
	cfg            config.Config
	store          memory.Store
	pipeline       *reply.Pipeline
	metrics        *observability.Metrics
	memoryBackend  string
	completionMode string
	upgrader       websocket.Upgrader
	watch          *watchHub
}

func New(cfg config.Config, store memory.Store, pipeline *reply.Pipeline, metrics *observability.Metrics, memoryBackend, completionMode string) *Server {
	return &Server{
		cfg:            cfg,
		store:          store,
		pipeline:       pipeline,
		metrics:        metrics,
		memoryBackend:  memoryBackend,
		completionMode: completionMode,
		watch:          newWatchHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     sameOriginCheck(cfg.AllowAnyWSOrigin),
		},
	}
}

// sameOriginCheck mirrors the chat endpoint's CORS openness only when
// explicitly enabled; by default browser websocket connections must come
// from the same origin so other sites cannot tail a user's transcript.
func sameOriginCheck(allowAny bool) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if allowAny {
			return true
		}
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			// Non-browser clients often omit Origin. Allow them.
			return true
		}
		return strings.EqualFold(originHost(origin), r.Host)
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(corsHeaders)
	r.MethodNotAllowed(handleMethodNotAllowed)

	// The chat endpoint is also mounted at the bare root so the service
	// can stand in for deployments that expose a single function path.
	r.Post("/", s.handleChat)
	r.Options("/", handlePreflight)
	r.Post("/v1/chat", s.handleChat)
	r.Options("/v1/chat", handlePreflight)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/memory/watch", s.handleWatch)

	return r
}

type chatRequest struct {
	Prompt  string  `json:"prompt"`
	Project *string `json:"project"`
	UserID  string  `json:"userId"`
}

type memorySummary struct {
	LastProject *string `json:"lastProject"`
	LastTask    *string `json:"lastTask"`
}

type chatResponse struct {
	Text   string        `json:"text"`
	Memory memorySummary `json:"memory"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if r.Body != nil {
		defer r.Body.Close()
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if strings.TrimSpace(req.UserID) == "" {
		s.metrics.ChatRequests.WithLabelValues("validation_error").Inc()
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing userId."})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.metrics.ChatRequests.WithLabelValues("validation_error").Inc()
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request: prompt required."})
		return
	}

	// A blank project is treated as absent: lastProject only moves when
	// the caller names one.
	project := req.Project
	if project != nil && strings.TrimSpace(*project) == "" {
		project = nil
	}

	ctx := r.Context()
	record := s.store.LoadOrDefault(ctx, req.UserID)

	text, err := s.pipeline.Run(ctx, &record, req.Prompt, project)
	if err != nil {
		s.metrics.ChatRequests.WithLabelValues("service_error").Inc()
		detail := err.Error()
		var se *reply.ServiceError
		if errors.As(err, &se) {
			detail = se.Detail()
		}
		log.Printf("httpapi: completion failed for %q: %v", req.UserID, err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Server error. Check backend logs.",
			"details": detail,
		})
		return
	}

	// Persistence is best-effort: the reply computed above goes back to
	// the caller even when durability was not achieved.
	if err := s.store.Save(ctx, req.UserID, record); err != nil {
		s.metrics.StoreSaveFailures.Inc()
		log.Printf("httpapi: save record for %q failed: %v", req.UserID, err)
	} else {
		s.watch.Publish(req.UserID, record)
	}

	s.metrics.ChatRequests.WithLabelValues("ok").Inc()
	respondJSON(w, http.StatusOK, chatResponse{
		Text:   text,
		Memory: memorySummary{LastProject: record.LastProject, LastTask: record.LastTask},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"memory_backend":  s.memoryBackend,
		"completion_mode": s.completionMode,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"memory_backend":  s.memoryBackend,
		"completion_mode": s.completionMode,
	})
}

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}

func handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
