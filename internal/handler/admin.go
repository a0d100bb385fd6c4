package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/ymatsu/zange-board/internal/apperror"
	"github.com/ymatsu/zange-board/internal/repository"
	"github.com/ymatsu/zange-board/internal/service"
)

// AdminHandler exposes the operator surface: row counts for sanity checks
// and the explicit password-reset operation.
//
// Every route is gated by RequireAdmin. There is no user-facing password
// reset in this product — resets are a support action performed with the
// deployment's admin key.
type AdminHandler struct {
	accounts *service.AccountService
	counters repository.CounterRepository
	key      string
	logger   *slog.Logger
}

// NewAdminHandler creates an AdminHandler. An empty key disables the whole
// admin surface (every request is rejected), which is the safe default for
// deployments that never set ADMIN_KEY.
func NewAdminHandler(
	accounts *service.AccountService,
	counters repository.CounterRepository,
	key string,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{accounts: accounts, counters: counters, key: key, logger: logger}
}

// RequireAdmin is middleware enforcing the X-Admin-Key header (or, for
// curl convenience, a ?key= query parameter). Anything that does not match
// the configured key is a 403 with the standard error body.
func (h *AdminHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		supplied := r.Header.Get("X-Admin-Key")
		if supplied == "" {
			supplied = r.URL.Query().Get("key")
		}

		// Constant-time compare; an empty configured key matches nothing.
		if h.key == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(h.key)) != 1 {
			h.logger.Warn("admin request rejected", slog.String("path", r.URL.Path))
			writeError(w, apperror.Forbidden())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// HandleDBCheck reports row totals.
//
// HTTP: GET /admin/dbcheck → {"ok":true,"users":N,"posts":N,"comments":N}
func (h *AdminHandler) HandleDBCheck(w http.ResponseWriter, r *http.Request) {
	counts, err := h.counters.Counts(r.Context())
	if err != nil {
		h.logger.Error("counting rows", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"users":    counts.Users,
		"posts":    counts.Posts,
		"comments": counts.Comments,
	})
}

// HandleResetPassword replaces a user's credential.
//
// HTTP: POST /admin/reset-password {email, password}
// The email accepts legacy forms (resets are mostly for exactly those
// accounts); the new password is validated and stored like a signup one.
func (h *AdminHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.accounts.ResetPassword(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
