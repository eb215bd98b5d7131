package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// APIServer exposes the assistant over HTTP for local tooling: one-shot
// processing, history browsing, and settings management.
type APIServer struct {
	coordinator *Coordinator
	history     *HistoryStore
	kv          KVStore
}

// NewAPIServer creates a server over the shared pipeline components.
func NewAPIServer(coordinator *Coordinator, history *HistoryStore, kv KVStore) *APIServer {
	return &APIServer{coordinator: coordinator, history: history, kv: kv}
}

// Router builds the HTTP routes.
func (s *APIServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))

	r.Post("/api/process", s.handleProcess)
	r.Get("/api/history", s.handleHistory)
	r.Get("/api/conversations", s.handleConversations)
	r.Delete("/api/history", s.handleClearHistory)
	r.Get("/api/settings", s.handleGetSettings)
	r.Put("/api/settings", s.handlePutSettings)

	return r
}

// Serve runs the server on addr until ctx is cancelled.
func (s *APIServer) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	LogInfo("API listening on %s", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type processRequest struct {
	Message string `json:"message"`
}

func (s *APIServer) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := s.coordinator.ProcessText(r.Context(), req.Message)
	if err != nil {
		var extractErr *ExtractError
		if errors.As(err, &extractErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *APIServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	var records []MessageRecord
	var err error
	if key := r.URL.Query().Get("conversation"); key != "" {
		records, err = s.history.QueryByConversation(r.Context(), key)
	} else {
		records, err = s.history.All(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []MessageRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *APIServer) handleConversations(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.history.Conversations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summaries == nil {
		summaries = []ConversationSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *APIServer) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.ClearAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *APIServer) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings := LoadSettings(r.Context(), s.kv)
	// Never echo the key back over the wire.
	settings.APIKey = ""
	writeJSON(w, http.StatusOK, settings)
}

// settingsPatch distinguishes omitted fields from explicit values so a
// partial update never silently resets what it does not mention.
type settingsPatch struct {
	APIKey    *string `json:"apiKey"`
	AIEnabled *bool   `json:"aiEnabled"`
	Model     *string `json:"model"`
}

func (s *APIServer) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var patch settingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings := storedSettings(r.Context(), s.kv)
	if patch.APIKey != nil && *patch.APIKey != "" {
		settings.APIKey = *patch.APIKey
	}
	if patch.AIEnabled != nil {
		settings.AIEnabled = *patch.AIEnabled
	}
	if patch.Model != nil && *patch.Model != "" {
		settings.Model = *patch.Model
	}
	if settings.Model == "" {
		settings.Model = defaultModel
	}

	if err := SaveSettings(r.Context(), s.kv, settings); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		LogError("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
