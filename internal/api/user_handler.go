package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fatihgnc/taskman-api/internal/api/shared"
	"github.com/fatihgnc/taskman-api/internal/avatar"
	"github.com/fatihgnc/taskman-api/internal/domain"
	"github.com/fatihgnc/taskman-api/internal/service"
)

// avatarFormField is the multipart form field carrying the avatar upload.
const avatarFormField = "avatar"

// UserHandler handles account-related API requests.
type UserHandler struct {
	users     service.UserService
	validator *validator.Validate
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{
		users:     users,
		validator: validator.New(),
	}
}

// SignUp handles POST /users.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, token, err := h.users.SignUp(r.Context(), req.Name, req.Email, req.Password, req.Age)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		User:  NewUserResponse(user),
		Token: token,
	})
}

// Login handles POST /users/login. Either credential failing yields the same
// generic 400 so the endpoint does not reveal which accounts exist.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(service.ErrInvalidCredentials))
		return
	}

	user, token, err := h.users.Login(r.Context(), domain.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		User:  NewUserResponse(user),
		Token: token,
	})
}

// Logout handles POST /users/logout. Only the token presented on this
// request is revoked; sessions on other devices stay valid.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireSession(w, r)
	if !ok {
		return
	}

	if err := h.users.Logout(r.Context(), user.ID, token); err != nil {
		HandleAPIError(w, r, err, "Failed to log out")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct{}{})
}

// LogoutAll handles POST /users/logoutAll.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requireSession(w, r)
	if !ok {
		return
	}

	if err := h.users.LogoutAll(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err, "Failed to log out")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct{}{})
}

// GetMe handles GET /users/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requireSession(w, r)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// UpdateMe handles PATCH /users/me. Only name, email, password, and age may
// be updated; any other key rejects the whole request without mutating
// anything.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := decodeStrict(r, allowedUserUpdateFields, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, service.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(updated))
}

// DeleteMe handles DELETE /users/me. The account and every owned task go
// together; the response echoes the removed profile.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requireSession(w, r)
	if !ok {
		return
	}

	if err := h.users.DeleteAccount(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete account")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// UploadAvatar handles POST /users/me/avatar with a multipart form carrying
// the image in the "avatar" field.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requireSession(w, r)
	if !ok {
		return
	}

	// The body cap leaves headroom for multipart framing around the 1 MB
	// image ceiling, which the processor enforces exactly.
	r.Body = http.MaxBytesReader(w, r.Body, avatar.MaxUploadBytes+64*1024)

	file, header, err := r.FormFile(avatarFormField)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Please provide an avatar file")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.Warn("failed to close avatar upload", "error", err)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Could not read the avatar file")
		return
	}

	if err := h.users.UploadAvatar(r.Context(), user.ID, data, header.Filename); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct{}{})
}

// DeleteAvatar handles DELETE /users/me/avatar.
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requireSession(w, r)
	if !ok {
		return
	}

	if err := h.users.DeleteAvatar(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete avatar")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct{}{})
}

// GetAvatar handles GET /users/{id}/avatar. This read is public: avatars are
// served by user ID without authentication, always as PNG.
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	data, err := h.users.GetAvatar(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write avatar response", "error", err)
	}
}

