package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/roster-api/internal/api/shared"
	"github.com/phrazzld/roster-api/internal/domain"
	"github.com/phrazzld/roster-api/internal/platform/logger"
	"github.com/phrazzld/roster-api/internal/presenter"
	"github.com/phrazzld/roster-api/internal/store"
)

// UserHandler handles user resource API requests.
type UserHandler struct {
	userStore store.UserStore
	userSpec  *presenter.Spec
}

// NewUserHandler creates a new UserHandler. The presenter spec is built
// once here, at startup, and reused for every request.
func NewUserHandler(userStore store.UserStore) (*UserHandler, error) {
	spec := presenter.UserSpec()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &UserHandler{
		userStore: userStore,
		userSpec:  spec,
	}, nil
}

// Create handles user registration. Uniqueness is enforced by the store's
// unique index; a duplicate email maps to 409.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req CreateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := domain.NewUser(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "email already taken")
			return
		}
		log.Error("failed to create user", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	h.respondWithUser(w, r, user, http.StatusCreated)
}

// List handles the paginated user listing. Ordering is stable
// (created_at, id ascending); an unpaginated full listing is never served.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	params, page, err := parseListParams(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	users, err := h.userStore.List(r.Context(), params)
	if err != nil {
		log.Error("failed to list users", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to list users")
		return
	}

	presented, err := presenter.PresentAll(h.userSpec, users)
	if err != nil {
		log.Error("failed to present users", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to list users")
		return
	}

	resp := ListUsersResponse{
		Users:   presented,
		Page:    page,
		PerPage: params.Limit,
	}
	if len(users) == params.Limit {
		last := users[len(users)-1]
		resp.NextCursor = encodeCursor(&store.UserCursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Get handles fetching a single user by ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithUser(w, r, user, http.StatusOK)
}

// Me handles fetching the authenticated user's own record.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithUser(w, r, user, http.StatusOK)
}

// Update handles profile updates. Only the subject may update itself; any
// other authenticated identity gets 403.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	userID, targetID, ok := h.requireSelf(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), targetID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Password != nil {
		user.Password = *req.Password
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.userStore.Update(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "email already taken")
			return
		}
		log.Error("failed to update user", "error", err, "user_id", userID)
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithUser(w, r, user, http.StatusOK)
}

// Delete handles user self-deletion, with the same ownership rule as Update.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, targetID, ok := h.requireSelf(w, r)
	if !ok {
		return
	}

	if err := h.userStore.Delete(r.Context(), targetID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// requireSelf extracts the authenticated user ID and the {id} path
// parameter and enforces that they match. A mismatch is 403: the token is
// valid, the identity just lacks the capability to act on another user.
func (h *UserHandler) requireSelf(
	w http.ResponseWriter,
	r *http.Request,
) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, uuid.Nil, false
	}

	targetID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	if userID != targetID {
		Forbid(w, r)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, targetID, true
}

// respondWithUser renders a user through the allow-list presenter. The
// presenter contract is what guarantees the credential hash never appears
// in any response.
func (h *UserHandler) respondWithUser(
	w http.ResponseWriter,
	r *http.Request,
	user *domain.User,
	status int,
) {
	body, err := h.userSpec.Present(user)
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to present user", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to render user")
		return
	}
	shared.RespondWithJSON(w, r, status, body)
}
