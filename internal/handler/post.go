package handler

import (
	"log/slog"
	"net/http"

	"github.com/ymatsu/zange-board/internal/service"
	"github.com/ymatsu/zange-board/internal/session"
)

// PostHandler exposes the board's post endpoints.
type PostHandler struct {
	posts    *service.PostService
	accounts *service.AccountService
	sessions *session.Manager
	logger   *slog.Logger
}

// NewPostHandler creates a PostHandler. It takes the account service too:
// the author of a post is derived from the session server-side.
func NewPostHandler(
	posts *service.PostService,
	accounts *service.AccountService,
	sessions *session.Manager,
	logger *slog.Logger,
) *PostHandler {
	return &PostHandler{posts: posts, accounts: accounts, sessions: sessions, logger: logger}
}

// HandleList returns all posts, newest first.
//
// HTTP: GET /api/posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		h.logger.Error("listing posts", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleCreate stores a new post.
//
// HTTP: POST /api/posts {text, target?, tag?, bg?, scope?}
//
// Any author/user field in the body is ignored — the request struct simply
// has no slot for it. The author comes from the session via the
// nickname → email → anonymous chain.
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text   string `json:"text"`
		Target string `json:"target"`
		Tag    string `json:"tag"`
		Bg     string `json:"bg"`
		Scope  string `json:"scope"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	author := h.accounts.DisplayName(r.Context(), h.sessions.FromRequest(w, r))
	post, err := h.posts.Create(r.Context(), author, service.PostInput{
		Text:   req.Text,
		Target: req.Target,
		Tag:    req.Tag,
		Bg:     req.Bg,
		Scope:  req.Scope,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}
