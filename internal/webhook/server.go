package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ad/tonblast-bot/internal/bot"
	"github.com/ad/tonblast-bot/internal/domain"

	"github.com/go-telegram/bot/models"
)

const (
	// SecretHeader carries the secret token configured with setWebhook
	SecretHeader = "X-Telegram-Bot-Api-Secret-Token"
	// RequestIDHeader echoes the request ID assigned to every request
	RequestIDHeader = "X-Request-Id"

	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second

	// an update may acknowledge a callback, reply and notify a referrer
	callsPerUpdate  = 3
	minWriteTimeout = 30 * time.Second
	writeSlack      = 5 * time.Second
)

// UpdateHandler processes one Telegram update
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update *models.Update) error
}

// StatsRecorder accepts game telemetry
type StatsRecorder interface {
	Record(ctx context.Context, userID string, kind domain.TelemetryKind, data json.RawMessage) (bool, error)
}

// Server exposes the webhook, telemetry and health endpoints
type Server struct {
	handler UpdateHandler
	stats   StatsRecorder
	secret  string
	logger  domain.Logger
	server  *http.Server
}

// NewServer creates a server. An empty secret disables the secret header check.
// deliveryTimeout bounds a single Bot API call and sizes the write timeout.
func NewServer(addr string, handler UpdateHandler, stats StatsRecorder, secret string, deliveryTimeout time.Duration, logger domain.Logger) *Server {
	s := &Server{
		handler: handler,
		stats:   stats,
		secret:  secret,
		logger:  logger,
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout(deliveryTimeout),
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// writeTimeout leaves room for every sequential Bot API call of one update
func writeTimeout(deliveryTimeout time.Duration) time.Duration {
	timeout := callsPerUpdate*deliveryTimeout + writeSlack
	if timeout < minWriteTimeout {
		return minWriteTimeout
	}
	return timeout
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/webhook", corsMiddleware(http.HandlerFunc(s.handleWebhook)))
	mux.Handle("/stats", corsMiddleware(http.HandlerFunc(s.handleStats)))
	mux.HandleFunc("/healthz", s.handleHealth)

	return s.requestID(s.recoverer(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("HTTP server shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	if s.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), []byte(s.secret)) != 1 {
		s.logger.Warn("webhook secret mismatch", "request_id", requestIDFrom(r.Context()))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var update models.Update
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&update); err != nil {
		s.logger.Warn("invalid webhook body", "request_id", requestIDFrom(r.Context()), "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No message data"})
		return
	}

	err := s.handler.HandleUpdate(r.Context(), &update)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	case errors.Is(err, bot.ErrMalformedUpdate):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No message data"})
	default:
		s.logger.Error("webhook processing failed",
			"request_id", requestIDFrom(r.Context()),
			"update_id", update.ID,
			"error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

type statsRequest struct {
	UserID json.RawMessage `json:"userId"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	var req statsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid stats data"})
		return
	}

	if _, err := s.stats.Record(r.Context(), userIDString(req.UserID), domain.TelemetryKind(req.Action), req.Data); err != nil {
		s.logger.Error("stats processing failed", "request_id", requestIDFrom(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// userIDString accepts the game client's user ID as either a JSON string or number
func userIDString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
