package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Sirneij/cryptoflow/internal/http/middleware"
	"github.com/Sirneij/cryptoflow/internal/http/response"
	"github.com/Sirneij/cryptoflow/internal/security"
	"github.com/Sirneij/cryptoflow/internal/service"
)

type UserHandler struct {
	auth    *service.AuthService
	cookies *security.CookieManager
	logger  *slog.Logger
}

func NewUserHandler(auth *service.AuthService, cookies *security.CookieManager, logger *slog.Logger) *UserHandler {
	return &UserHandler{auth: auth, cookies: cookies, logger: logger}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, user.Visible())
}

type activateRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Code   string    `json:"code"`
}

func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == uuid.Nil || req.Code == "" {
		response.Error(w, r, http.StatusBadRequest, "user_id and code are required")
		return
	}
	if err := h.auth.Activate(r.Context(), req.UserID, req.Code); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "account activated"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.cookies.SetSessionCookie(w, token, h.auth.SessionTTL())
	response.JSON(w, r, http.StatusOK, user.Visible())
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := security.GetCookie(r, security.SessionCookieName)
	if err := h.auth.Logout(r.Context(), token); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.cookies.ClearSessionCookie(w)
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	response.JSON(w, r, http.StatusOK, user.Visible())
}
