package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/workflow"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
	"github.com/gorilla/mux"
)

// ClosureRequestsHandler is a thin HTTP layer over the workflow service; all
// review semantics live in internal/workflow.
type ClosureRequestsHandler struct {
	workflow *workflow.Service
}

func NewClosureRequestsHandler(wf *workflow.Service) *ClosureRequestsHandler {
	return &ClosureRequestsHandler{workflow: wf}
}

type createClosureRequest struct {
	TunnelID      string `json:"tunnelId"`
	RequestedByID int64  `json:"requestedById"`
	Message       string `json:"message"`
}

func (h *ClosureRequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !validateRequest(r.Context(), w, "closure_request_create", body) {
		return
	}

	var req createClosureRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	cr, err := h.workflow.RequestClosure(r.Context(), req.TunnelID, req.RequestedByID, req.Message)
	if err != nil {
		writeDomainError(w, err, "failed to create closure request")
		return
	}
	writeJSON(w, cr, http.StatusCreated)
}

func (h *ClosureRequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.workflow.ListAll(r.Context())
	if err != nil {
		writeError(w, "failed to fetch closure requests", http.StatusInternalServerError)
		return
	}
	if requests == nil {
		requests = []models.ClosureRequest{}
	}
	writeJSON(w, requests, http.StatusOK)
}

func (h *ClosureRequestsHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.workflow.ListPending(r.Context())
	if err != nil {
		writeError(w, "failed to fetch closure requests", http.StatusInternalServerError)
		return
	}
	if requests == nil {
		requests = []models.ClosureRequest{}
	}
	writeJSON(w, requests, http.StatusOK)
}

func (h *ClosureRequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid closure request id", http.StatusBadRequest)
		return
	}
	cr, err := h.workflow.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to fetch closure request")
		return
	}
	writeJSON(w, cr, http.StatusOK)
}

func (h *ClosureRequestsHandler) ListByTunnel(w http.ResponseWriter, r *http.Request) {
	requests, err := h.workflow.ListByTunnel(r.Context(), mux.Vars(r)["tunnelId"])
	if err != nil {
		writeError(w, "failed to fetch closure requests", http.StatusInternalServerError)
		return
	}
	if requests == nil {
		requests = []models.ClosureRequest{}
	}
	writeJSON(w, requests, http.StatusOK)
}

func (h *ClosureRequestsHandler) ListByRequester(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userId")
	if !ok {
		writeError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	requests, err := h.workflow.ListByRequester(r.Context(), userID)
	if err != nil {
		writeError(w, "failed to fetch closure requests", http.StatusInternalServerError)
		return
	}
	if requests == nil {
		requests = []models.ClosureRequest{}
	}
	writeJSON(w, requests, http.StatusOK)
}

type reviewClosureRequest struct {
	Status       string `json:"status"`
	ReviewedByID *int64 `json:"reviewedById"`
	ReviewNotes  string `json:"reviewNotes"`
}

// Update applies a review decision. Approving or rejecting requires a
// reviewer id in the body; the decision itself is validated by the workflow.
func (h *ClosureRequestsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid closure request id", http.StatusBadRequest)
		return
	}

	var req reviewClosureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.ReviewedByID == nil {
		writeError(w, "reviewedById is required", http.StatusBadRequest)
		return
	}

	cr, err := h.workflow.Review(r.Context(), id, req.Status, *req.ReviewedByID, req.ReviewNotes, requestMeta(r))
	if err != nil {
		writeDomainError(w, err, "failed to review closure request")
		return
	}
	writeJSON(w, cr, http.StatusOK)
}

func (h *ClosureRequestsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid closure request id", http.StatusBadRequest)
		return
	}
	if err := h.workflow.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, "failed to delete closure request")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
