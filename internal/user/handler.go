package user

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hkarim/account-service/pkg/logger"
	"github.com/hkarim/account-service/pkg/middleware"
	"github.com/hkarim/account-service/pkg/response"
)

// Handler handles HTTP requests for account operations
type Handler struct {
	service   *Service
	auth      func(http.Handler) http.Handler
	maxUpload int64
}

// NewHandler creates a new account handler. The auth middleware guards the
// session-termination routes; maxUpload caps the avatar request body size.
func NewHandler(service *Service, auth func(http.Handler) http.Handler, maxUpload int64) *Handler {
	return &Handler{
		service:   service,
		auth:      auth,
		maxUpload: maxUpload,
	}
}

// Routes returns the router for account endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/logout", h.Logout)
		r.Post("/logout-all", h.LogoutAll)
	})

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Post("/{id}/avatar", h.UploadAvatar)
	r.Delete("/{id}/avatar", h.DeleteAvatar)
	r.Get("/{id}/avatar", h.GetAvatar)

	return r
}

// parseID extracts and parses the {id} URL parameter.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// Register handles POST /users/register
// @Summary      Register a new account
// @Description  Create an account, send the welcome mail and issue the first session token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      201 {object} response.Envelope{data=AuthResponse}
// @Failure      400 {object} response.Envelope
// @Failure      500 {object} response.Envelope
// @Router       /users/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	u, token, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyInUse) {
			response.BadRequest(w, err.Error())
			return
		}
		logger.FromRequest(r).Error().Err(err).Msg("failed to register user")
		response.InternalError(w, "something went wrong")
		return
	}

	response.JSON(w, http.StatusCreated, response.MsgCreated, &AuthResponse{
		User:  u.ToResponse(),
		Token: token,
	})
}

// Login handles POST /users/login
// @Summary      Authenticate
// @Description  Verify credentials and issue a new session token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} response.Envelope{data=AuthResponse}
// @Failure      401 {object} response.Envelope
// @Failure      500 {object} response.Envelope
// @Router       /users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	u, token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		logger.FromRequest(r).Error().Err(err).Msg("failed to log user in")
		response.InternalError(w, "something went wrong")
		return
	}

	response.JSON(w, http.StatusOK, response.MsgOK, &AuthResponse{
		User:  u.ToResponse(),
		Token: token,
	})
}

// Logout handles POST /users/logout
// @Summary      End the current session
// @Description  Remove the presented token from the session collection; other sessions stay valid
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Envelope
// @Failure      401 {object} response.Envelope
// @Failure      500 {object} response.Envelope
// @Router       /users/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	token, _ := middleware.GetToken(r.Context())

	if err := h.service.Logout(r.Context(), userID, token); err != nil {
		logger.FromRequest(r).Error().Err(err).Msg("failed to log user out")
		response.InternalError(w, "something went wrong")
		return
	}

	response.JSON(w, http.StatusOK, response.MsgOK, nil)
}

// LogoutAll handles POST /users/logout-all
// @Summary      End every session
// @Description  Clear the authenticated user's entire session collection
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Envelope
// @Failure      401 {object} response.Envelope
// @Failure      500 {object} response.Envelope
// @Router       /users/logout-all [post]
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.service.LogoutAll(r.Context(), userID); err != nil {
		logger.FromRequest(r).Error().Err(err).Msg("failed to log user out of all sessions")
		response.InternalError(w, "something went wrong")
		return
	}

	response.JSON(w, http.StatusOK, response.MsgOK, nil)
}

// List handles GET /users
// @Summary      List all users
// @Description  Return every user record, unfiltered and unpaginated
// @Tags         users
// @Produce      json
// @Success      200 {object} response.Envelope{data=[]UserResponse}
// @Failure      500 {object} response.Envelope
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		logger.FromRequest(r).Error().Err(err).Msg("failed to list users")
		response.InternalError(w, "something went wrong")
		return
	}

	out := make([]*UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}

	response.JSON(w, http.StatusOK, response.MsgOK, out)
}

// GetByID handles GET /users/{id}
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} response.Envelope{data=UserResponse}
// @Failure      404 {object} response.Envelope
// @Failure      500 {object} response.Envelope
// @Router       /users/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.NotFound(w, ErrUserNotFound.Error())
		return
	}

	u, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		logger.FromRequest(r).Error().Err(err).Msg("failed to get user")
		response.InternalError(w, "something went wrong")
		return
	}

	response.JSON(w, http.StatusOK, response.MsgOK, u.ToResponse())
}

// Update handles PATCH /users/{id}
// @Summary      Update a user
// @Description  Apply name, email, password and age together; partial requests succeed without mutating
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path int true "User ID"
// @Param        request body UpdateUserRequest true "Update request"
// @Success      200 {object} response.Envelope{data=UserResponse}
// @Failure      404 {object} response.Envelope
// @Failure      500 {object} response.Envelope
// @Router       /users/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.NotFound(w, ErrUserNotFound.Error())
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	u, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		logger.FromRequest(r).Error().Err(err).Msg("failed to update user")
		response.InternalError(w, "something went wrong")
		return
	}

	response.JSON(w, http.StatusOK, response.MsgOK, u.ToResponse())
}

// Delete handles DELETE /users/{id}
// @Summary      Delete a user
// @Description  Remove the record and its avatar, returning the deleted user
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} response.Envelope{data=UserResponse}
// @Failure      404 {object} response.Envelope
// @Failure      500 {object} response.Envelope
// @Router       /users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.NotFound(w, ErrUserNotFound.Error())
		return
	}

	u, err := h.service.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		logger.FromRequest(r).Error().Err(err).Msg("failed to delete user")
		response.InternalError(w, "something went wrong")
		return
	}

	response.JSON(w, http.StatusOK, response.MsgOK, u.ToResponse())
}

// UploadAvatar handles POST /users/{id}/avatar
// @Summary      Upload an avatar
// @Description  Accept a single image file, normalize it to 300x300 PNG and store it
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path int true "User ID"
// @Param        avatar formData file true "Avatar image (.jpg, .jpeg or .png)"
// @Success      200 {object} response.Envelope{data=UserResponse}
// @Failure      400 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Failure      500 {object} response.Envelope
// @Router       /users/{id}/avatar [post]
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.NotFound(w, ErrUserNotFound.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("avatar")
	if err != nil {
		response.BadRequest(w, "avatar file is required")
		return
	}
	defer file.Close()

	// Filename check only; the content is not sniffed.
	if !validAvatarFilename(header.Filename) {
		response.BadRequest(w, "please upload an image with a .jpg, .jpeg or .png extension")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "failed to read avatar file")
		return
	}

	u, err := h.service.UploadAvatar(r.Context(), id, data)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		logger.FromRequest(r).Error().Err(err).Msg("failed to upload avatar")
		response.InternalError(w, "something went wrong")
		return
	}

	response.JSON(w, http.StatusOK, response.MsgUpload, u.ToResponse())
}

// DeleteAvatar handles DELETE /users/{id}/avatar
// @Summary      Delete the avatar
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} response.Envelope{data=UserResponse}
// @Failure      404 {object} response.Envelope
// @Failure      500 {object} response.Envelope
// @Router       /users/{id}/avatar [delete]
func (h *Handler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.NotFound(w, ErrUserNotFound.Error())
		return
	}

	u, err := h.service.DeleteAvatar(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		logger.FromRequest(r).Error().Err(err).Msg("failed to delete avatar")
		response.InternalError(w, "something went wrong")
		return
	}

	response.JSON(w, http.StatusOK, response.MsgOK, u.ToResponse())
}

// GetAvatar handles GET /users/{id}/avatar
// @Summary      Get the avatar
// @Description  Serve the stored avatar bytes. The Content-Type is image/jpeg even though the stored bytes are PNG; existing consumers depend on this header.
// @Tags         users
// @Produce      jpeg
// @Param        id path int true "User ID"
// @Success      200 {file} binary
// @Failure      404 {object} response.Envelope
// @Failure      500 {object} response.Envelope
// @Router       /users/{id}/avatar [get]
func (h *Handler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.NotFound(w, ErrAvatarNotFound.Error())
		return
	}

	avatar, err := h.service.GetAvatar(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAvatarNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		logger.FromRequest(r).Error().Err(err).Msg("failed to get avatar")
		response.InternalError(w, "something went wrong")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(avatar)
}
