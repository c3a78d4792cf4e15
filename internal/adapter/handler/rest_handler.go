package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/hive-corporation/keyguard/internal/adapter/exporter"
	"github.com/hive-corporation/keyguard/internal/core/domain"
	"github.com/hive-corporation/keyguard/internal/core/ports"
	"github.com/hive-corporation/keyguard/internal/core/service"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxEventBytes    = 256 << 10
)

// EventResponder runs the exposed key playbook for one event.
type EventResponder interface {
	Respond(ctx context.Context, event domain.TriggerEvent) (service.Response, error)
}

type RestHandler struct {
	responder   EventResponder
	incidents   ports.IncidentReader
	cefExporter *exporter.CEFExporter
	logger      *slog.Logger
}

// NewRestHandler builds the API handler. incidents may be nil when no
// archive is configured; the incident endpoints then answer 503.
func NewRestHandler(responder EventResponder, incidents ports.IncidentReader, logger *slog.Logger) *RestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &RestHandler{
		responder: responder,
		incidents: incidents,
		logger:    logger,
	}
	if incidents != nil {
		h.cefExporter = exporter.NewCEFExporter(incidents)
	}
	return h
}

// Routes registers every endpoint on router.
func (h *RestHandler) Routes(router *mux.Router) {
	router.HandleFunc("/api/v1/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/events/health", h.HandleHealthEvent).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/incidents", h.ListIncidents).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/incidents/{id}", h.GetIncident).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/incidents/{id}/cef", h.GetIncidentCEF).Methods(http.MethodGet)
}

// Health check endpoint
func (h *RestHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "keyguard-api",
	}
	writeJSON(w, http.StatusOK, response)
}

// HandleHealthEvent accepts the same EventBridge envelope the Lambda
// receives and answers with the same {statusCode, body} document.
func (h *RestHandler) HandleHealthEvent(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	event, err := domain.ParseTriggerEvent(raw)
	if err != nil {
		h.logger.Warn("rejected health event", "error", err)
		writeJSON(w, http.StatusBadRequest, service.Response{
			StatusCode: http.StatusBadRequest,
			Body:       service.ExtractionFailureBody,
		})
		return
	}

	resp, err := h.responder.Respond(r.Context(), event)
	if err != nil {
		h.logger.Error("event processing aborted", "event_id", event.ID, "error", err)
		writeError(w, http.StatusServiceUnavailable, "event processing aborted")
		return
	}

	writeJSON(w, resp.StatusCode, resp)
}

// ListIncidents returns the newest archived incidents (?limit=, max 100).
func (h *RestHandler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	if !h.archiveEnabled(w) {
		return
	}

	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid 'limit' parameter")
			return
		}
		limit = min(n, maxListLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	incidents, err := h.incidents.FindRecent(ctx, limit)
	if err != nil {
		h.logger.Error("failed to list incidents", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query incidents")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(incidents),
		"incidents": incidents,
	})
}

func (h *RestHandler) GetIncident(w http.ResponseWriter, r *http.Request) {
	if !h.archiveEnabled(w) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	incident, err := h.incidents.FindByID(ctx, id)
	if err != nil {
		h.writeLookupError(w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, incident)
}

// GetIncidentCEF exports one incident for SIEM ingestion.
func (h *RestHandler) GetIncidentCEF(w http.ResponseWriter, r *http.Request) {
	if !h.archiveEnabled(w) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	data, err := h.cefExporter.ExportIncident(ctx, id)
	if err != nil {
		h.writeLookupError(w, id, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(data)); err != nil {
		h.logger.Error("failed to write CEF response", "error", err)
	}
}

func (h *RestHandler) archiveEnabled(w http.ResponseWriter) bool {
	if h.incidents == nil {
		writeError(w, http.StatusServiceUnavailable, "incident archive not configured")
		return false
	}
	return true
}

func (h *RestHandler) writeLookupError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, ports.ErrIncidentNotFound) {
		writeError(w, http.StatusNotFound, "incident not found")
		return
	}
	h.logger.Error("failed to fetch incident", "incident_id", id, "error", err)
	writeError(w, http.StatusInternalServerError, "failed to query incident")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
