// Package httpapi exposes the reconciliation endpoint over HTTP. Handlers
// express sync behavior; persistence and conflict semantics live in the
// records service.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/avelichka/lectern/internal/logging"
	"github.com/avelichka/lectern/internal/syncmsg"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Reconciler applies a batch on behalf of an authenticated principal;
// *records.Service is the real implementation.
type Reconciler interface {
	Reconcile(ctx context.Context, callerPrincipal string, batch []syncmsg.Mutation) []syncmsg.RecordResult
}

type Server struct {
	reconciler Reconciler
	logger     logging.Logger
	jwtSecret  []byte
}

func NewServer(reconciler Reconciler, logger logging.Logger, jwtSecret []byte) *Server {
	return &Server{reconciler: reconciler, logger: logger, jwtSecret: jwtSecret}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/sync", s.requireAuth(http.HandlerFunc(s.handleSync)))
	mux.HandleFunc("/healthz", handleHealthz)
}

// handleSync applies the submitted batch in order and reports per-record
// outcomes. Only transport-level problems surface as non-200 statuses;
// rejected records are routine and travel inside a 200 response.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	principal := principalFrom(r.Context())

	var payload syncmsg.BatchRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.logger.Warn(r.Context(), "sync decode error", "principal", principal, "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	results := s.reconciler.Reconcile(r.Context(), principal, payload.Records)

	resp := syncmsg.BatchResponse{OK: true, Results: results}
	for _, res := range results {
		if res.OK {
			resp.Processed++
		} else {
			resp.Failed++
		}
	}

	s.logger.Info(r.Context(), "batch reconciled",
		"principal", principal, "processed", resp.Processed, "failed", resp.Failed)
	writeJSON(w, http.StatusOK, resp)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
