package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/uferekalu/finacle-banking/internal/auth"
	"github.com/uferekalu/finacle-banking/internal/httputil"
	"github.com/uferekalu/finacle-banking/internal/ledger"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	if n := utf8.RuneCountInString(strings.TrimSpace(r.Name)); n < 3 || n > 40 {
		return &ledger.ValidationError{Field: "name", Message: "must be 3 to 40 characters"}
	}
	email := strings.TrimSpace(r.Email)
	if len(email) > 200 {
		return &ledger.ValidationError{Field: "email", Message: "must be at most 200 characters"}
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return &ledger.ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	if n := len(r.Password); n < 6 || n > 200 {
		return &ledger.ValidationError{Field: "password", Message: "must be 6 to 200 characters"}
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Register godoc
// @Summary  Register a user
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body RegisterRequest true "new user"
// @Success  201 {object} UserView
// @Failure  400 {object} httputil.ErrorResponse
// @Router   /users/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeErr(w, r, err)
		return
	}

	user, err := auth.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, ledger.ErrAlreadyExists) {
			httputil.WriteError(w, http.StatusBadRequest, string(ledger.KindAlreadyExists),
				"user with email "+user.Email+" already exists")
			return
		}
		h.writeErr(w, r, err)
		return
	}
	h.log.Info("user registered", zap.Uint("user_id", user.ID))
	httputil.WriteJSON(w, http.StatusCreated, userView(user))
}

// Login godoc
// @Summary  Log in and receive a bearer token
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body LoginRequest true "credentials"
// @Success  200 {object} LoginResponse
// @Failure  401 {object} httputil.ErrorResponse
// @Failure  404 {object} httputil.ErrorResponse
// @Router   /users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		h.badRequest(w, errors.New("email and password are required"))
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, string(ledger.KindNotFound), "user not found")
			return
		}
		h.writeErr(w, r, err)
		return
	}
	if err := auth.CheckPassword(user, req.Password); err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, kindUnauthorized, err.Error())
		return
	}

	token, err := h.tokens.IssueToken(user.ID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{Message: "Logged in as " + user.Name, Token: token})
}

// GetUser godoc
// @Summary  Fetch a user
// @Tags     users
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "user id"
// @Success  200 {object} UserView
// @Failure  404 {object} httputil.ErrorResponse
// @Router   /users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, fmt.Errorf("user %d: %w", id, err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, userView(user))
}
