package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/audit"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/repository"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/roles"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

type UsersHandler struct {
	users    repository.UserRepo
	recorder *audit.Recorder
}

func NewUsersHandler(users repository.UserRepo, recorder *audit.Recorder) *UsersHandler {
	return &UsersHandler{users: users, recorder: recorder}
}

func requestMeta(r *http.Request) audit.RequestMeta {
	return audit.RequestMeta{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil && id > 0
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, "failed to fetch users", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, users, http.StatusOK)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, "failed to fetch user", http.StatusInternalServerError)
		return
	}
	if user == nil {
		writeError(w, "user not found", http.StatusNotFound)
		return
	}
	writeJSON(w, user, http.StatusOK)
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !validateRequest(r.Context(), w, "user_create", body) {
		return
	}

	var req registerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	existing, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		writeError(w, "error checking email", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		writeError(w, "email already in use", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, "error hashing password", http.StatusInternalServerError)
		return
	}

	role := roles.Role(req.Role)
	if role == "" {
		role = roles.Public
	}
	user := &models.User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hash),
		Role:     role,
		Status:   models.StatusActive,
	}
	id, err := h.users.CreateUser(ctx, user)
	if err != nil {
		writeError(w, "failed to create user", http.StatusInternalServerError)
		return
	}
	user.ID = id

	writeJSON(w, user, http.StatusCreated)
}

type updateUserRequest struct {
	models.UserPatch
	// AdminID identifies the actor making the update; it is stripped before
	// the patch is persisted.
	AdminID *int64 `json:"adminId,omitempty"`
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	current, err := h.users.GetUser(ctx, id)
	if err != nil {
		writeError(w, "failed to fetch user", http.StatusInternalServerError)
		return
	}
	if current == nil {
		writeError(w, "user not found", http.StatusNotFound)
		return
	}

	// Diff against the stored record before the merge so the audit entry
	// lists only the fields that actually changed.
	changedFields, roleChange, statusChange := audit.DiffUserFields(*current, req.UserPatch)

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, "error hashing password", http.StatusInternalServerError)
			return
		}
		hashed := string(hash)
		req.Password = &hashed
	}

	updated, err := h.users.UpdateUser(ctx, id, req.UserPatch)
	if err != nil {
		writeError(w, "failed to update user", http.StatusInternalServerError)
		return
	}

	actorID := int64(0)
	if req.AdminID != nil {
		actorID = *req.AdminID
	} else if ctxID, ok := actorFromContext(ctx); ok {
		actorID = ctxID
	}

	if actorID > 0 && len(changedFields) > 0 {
		details := map[string]any{
			"targetUser":     id,
			"targetUsername": current.Username,
			"targetUserRole": current.Role,
			"updatedFields":  changedFields,
		}
		if roleChange != nil {
			details["roleChange"] = roleChange
		}
		if statusChange != nil {
			details["statusChange"] = statusChange
		}
		if err := h.recorder.Record(ctx, audit.Entry{
			ActorID:       actorID,
			Action:        "update_user",
			Category:      "user",
			Details:       details,
			EntityID:      strconv.FormatInt(id, 10),
			RequiredRoles: roles.ReviewerRoles,
			Meta:          requestMeta(r),
		}); err != nil {
			logger.Error("record user update audit entry", slog.Any("err", err))
		}
	}

	writeJSON(w, updated, http.StatusOK)
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	deleted, err := h.users.DeleteUser(r.Context(), id)
	if err != nil {
		writeError(w, "failed to delete user", http.StatusInternalServerError)
		return
	}
	if !deleted {
		writeError(w, "user not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
