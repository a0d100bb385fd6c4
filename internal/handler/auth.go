package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ymatsu/zange-board/internal/apperror"
	"github.com/ymatsu/zange-board/internal/model"
	"github.com/ymatsu/zange-board/internal/service"
	"github.com/ymatsu/zange-board/internal/session"
)

// AuthHandler exposes signup, login, logout, and session introspection.
//
// The handler's only jobs are JSON decode/encode and producing the
// per-request session handle; normalization, candidate matching, and
// session binding all happen in the account service.
type AuthHandler struct {
	accounts *service.AccountService
	sessions *session.Manager
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(accounts *service.AccountService, sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions, logger: logger}
}

// userResponse is the success envelope for auth endpoints:
//
//	{"ok":true,"user":{...}}
//
// User is a pointer so /api/me can encode "user":null for anonymous
// requests.
type userResponse struct {
	OK   bool              `json:"ok"`
	User *model.PublicUser `json:"user"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// HandleSignup registers a new account.
//
// HTTP: POST /api/signup {email, password, nickname?}
// 201 on success, 400 on validation failure, 409 on duplicate email.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sess := h.sessions.FromRequest(w, r)
	user, err := h.accounts.Signup(r.Context(), sess, req.Email, req.Password, req.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{OK: true, User: user})
}

// HandleLogin authenticates credentials and binds a permanent session.
//
// HTTP: POST /api/login {email, password}
// 200 on success, 401 with an undifferentiated "invalid credentials"
// otherwise.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sess := h.sessions.FromRequest(w, r)
	user, err := h.accounts.Login(r.Context(), sess, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{OK: true, User: user})
}

// HandleLogout clears the session.
//
// HTTP: POST /api/logout — POST, not GET: logout changes state.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.accounts.Logout(h.sessions.FromRequest(w, r))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleMe reports the session's user, if any.
//
// HTTP: GET /api/me → {"ok":true,"user":{...}} or {"ok":false,"user":null}.
// Always 200 — an anonymous session is a valid state, not an error.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.CurrentUser(r.Context(), h.sessions.FromRequest(w, r))
	if err != nil {
		h.logger.Error("resolving current user", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{OK: user != nil, User: user})
}

// decodeJSON decodes a request body, mapping malformed JSON to a
// validation error so the client gets the standard 400 body.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid json")
	}
	return nil
}
