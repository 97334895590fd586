package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/repository"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/roles"
	"github.com/gorilla/mux"
)

type OperationsLogsHandler struct {
	logs  repository.OperationsLogRepo
	users repository.UserRepo
}

func NewOperationsLogsHandler(logs repository.OperationsLogRepo, users repository.UserRepo) *OperationsLogsHandler {
	return &OperationsLogsHandler{logs: logs, users: users}
}

// Create appends a log entry directly. The acting user must exist and hold a
// staff role; entries written through the workflow bypass this handler.
func (h *OperationsLogsHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !validateRequest(r.Context(), w, "operations_log_create", body) {
		return
	}

	var entry models.OperationsLog
	if err := json.Unmarshal(body, &entry); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	actor, err := h.users.GetUser(r.Context(), entry.UserID)
	if err != nil {
		writeError(w, "failed to fetch user", http.StatusInternalServerError)
		return
	}
	if actor == nil {
		writeError(w, "user not found", http.StatusNotFound)
		return
	}
	if !roles.HasAnyPermission(actor.Role, roles.ReviewerRoles) {
		writeError(w, "insufficient permissions", http.StatusForbidden)
		return
	}

	id, err := h.logs.AppendLog(r.Context(), &entry)
	if err != nil {
		writeError(w, "failed to create log entry", http.StatusInternalServerError)
		return
	}
	entry.ID = id
	writeJSON(w, entry, http.StatusCreated)
}

// List supports filtering by userId, category, startDate, endDate (RFC 3339
// or unix milliseconds), limit, and offset query parameters.
func (h *OperationsLogsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := logFilterFromQuery(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logs, err := h.logs.ListLogs(r.Context(), filter)
	if err != nil {
		writeError(w, "failed to fetch logs", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []models.OperationsLog{}
	}
	writeJSON(w, logs, http.StatusOK)
}

func (h *OperationsLogsHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	logs, err := h.logs.ListLogsByEntity(r.Context(), mux.Vars(r)["entityId"])
	if err != nil {
		writeError(w, "failed to fetch logs", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []models.OperationsLog{}
	}
	writeJSON(w, logs, http.StatusOK)
}

func logFilterFromQuery(r *http.Request) (models.LogFilter, error) {
	var filter models.LogFilter
	q := r.URL.Query()

	if v := q.Get("userId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, errInvalidQueryParam("userId")
		}
		filter.UserID = &id
	}
	if v := q.Get("category"); v != "" {
		filter.Category = &v
	}
	if v := q.Get("startDate"); v != "" {
		t, err := parseTimestamp(v)
		if err != nil {
			return filter, errInvalidQueryParam("startDate")
		}
		filter.StartDate = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := parseTimestamp(v)
		if err != nil {
			return filter, errInvalidQueryParam("endDate")
		}
		filter.EndDate = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errInvalidQueryParam("limit")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errInvalidQueryParam("offset")
		}
		filter.Offset = n
	}
	return filter, nil
}

func parseTimestamp(v string) (time.Time, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(time.RFC3339, v)
}

func errInvalidQueryParam(name string) error {
	return fmt.Errorf("invalid query parameter: %s", name)
}
