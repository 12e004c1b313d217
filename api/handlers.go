/*
handlers.go - HTTP API handlers for the record manager

PURPOSE:
  Exposes the three record repositories via REST API. Handles HTTP
  request/response and JSON serialization, and delegates everything
  else to crm.Book.

ENDPOINTS:
  Clients (parties):
    GET    /api/clients          List clients (?q=&status=)
    POST   /api/clients          Create client
    GET    /api/clients/{id}     Get client
    PUT    /api/clients/{id}     Partial update
    DELETE /api/clients/{id}     Delete client

  Deals (opportunities):
    GET    /api/deals            List deals (?q=&status=&client_id=)
    ...same item routes as clients

  Tasks (action items):
    GET    /api/tasks            List tasks (?q=&is_done=&client_id=&deal_id=)
    ...same item routes as clients

ARCHITECTURE:
  The three record kinds share one generic resource type. Each resource
  holds its repository and a name used in error messages; the filter
  parser is shared because each descriptor ignores options it does not
  declare.

PARTIAL UPDATES:
  PUT bodies decode into the crm *Fields types. A key left out of the
  body is not touched; a key set to null clears the column.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid JSON, invalid id or query parameter, validation errors
  - 404: No such record, or PUT with nothing to update
  - 503: Database busy, the client may retry
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Error and health payloads
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/warp/records-engine/crm"
	"github.com/warp/records-engine/generic"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	// Ping checks that storage is reachable. Nil means always healthy.
	Ping func(r *http.Request) error

	clients *resource[crm.Party, crm.PartyFields]
	deals   *resource[crm.Opportunity, crm.OpportunityFields]
	tasks   *resource[crm.ActionItem, crm.ActionItemFields]
}

// NewHandler creates a new handler over the given repositories.
func NewHandler(book *crm.Book) *Handler {
	return &Handler{
		clients: &resource[crm.Party, crm.PartyFields]{name: "Client", repo: book.Parties},
		deals:   &resource[crm.Opportunity, crm.OpportunityFields]{name: "Deal", repo: book.Opportunities},
		tasks:   &resource[crm.ActionItem, crm.ActionItemFields]{name: "Task", repo: book.ActionItems},
	}
}

// Health reports whether the service can reach its database.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.Ping != nil {
		if err := h.Ping(r); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// =============================================================================
// RESOURCE HANDLERS
// =============================================================================

// resource serves the five CRUD routes of one record kind.
type resource[T, F any] struct {
	name string
	repo generic.Repository[T, F]
}

func (res *resource[T, F]) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query parameter", err)
		return
	}

	records, err := res.repo.List(r.Context(), filter)
	if err != nil {
		writeStoreError(w, fmt.Sprintf("Failed to list %ss", res.lower()), err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (res *resource[T, F]) create(w http.ResponseWriter, r *http.Request) {
	var fields F
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id, err := res.repo.Create(r.Context(), fields)
	if err != nil {
		writeStoreError(w, fmt.Sprintf("Failed to create %s", res.lower()), err)
		return
	}

	rec, ok, err := res.repo.Get(r.Context(), id)
	if err != nil || !ok {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create %s", res.lower()), err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (res *resource[T, F]) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	rec, ok, err := res.repo.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, fmt.Sprintf("Failed to get %s", res.lower()), err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, res.name+" not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (res *resource[T, F]) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	var fields F
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	updated, err := res.repo.Update(r.Context(), id, fields)
	if err != nil {
		writeStoreError(w, fmt.Sprintf("Failed to update %s", res.lower()), err)
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, res.name+" not found", nil)
		return
	}

	rec, ok, err := res.repo.Get(r.Context(), id)
	if err != nil || !ok {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to update %s", res.lower()), err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (res *resource[T, F]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	deleted, err := res.repo.Delete(r.Context(), id)
	if err != nil {
		writeStoreError(w, fmt.Sprintf("Failed to delete %s", res.lower()), err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, res.name+" not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (res *resource[T, F]) lower() string {
	return strings.ToLower(res.name)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer, got %q", raw)
	}
	return id, nil
}

// parseFilter reads the list query parameters. Empty values are treated
// as not set.
func parseFilter(r *http.Request) (generic.Filter, error) {
	q := r.URL.Query()
	filter := generic.Filter{
		Query:  q.Get("q"),
		Status: q.Get("status"),
	}

	if raw := q.Get("is_done"); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("is_done: %w", err)
		}
		filter.Done = &done
	}

	var err error
	if filter.ClientID, err = parseOptionalID(q.Get("client_id")); err != nil {
		return filter, fmt.Errorf("client_id: %w", err)
	}
	if filter.DealID, err = parseOptionalID(q.Get("deal_id")); err != nil {
		return filter, fmt.Errorf("deal_id: %w", err)
	}
	return filter, nil
}

func parseOptionalID(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps repository errors to a status code.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	var vErr *generic.ValidationError
	switch {
	case errors.As(err, &vErr):
		resp := ErrorResponse{Error: message, Code: "validation", Details: vErr.Error(), Field: vErr.Field}
		writeJSON(w, http.StatusBadRequest, resp)
	case generic.IsRetryable(err):
		resp := ErrorResponse{Error: message, Code: "busy", Details: err.Error()}
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, resp)
	case generic.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: "constraint", Details: err.Error()})
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
