package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ymatsu/zange-board/internal/apperror"
	"github.com/ymatsu/zange-board/internal/service"
	"github.com/ymatsu/zange-board/internal/session"
)

// CommentHandler exposes the comment endpoints.
type CommentHandler struct {
	comments *service.CommentService
	accounts *service.AccountService
	sessions *session.Manager
	logger   *slog.Logger
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(
	comments *service.CommentService,
	accounts *service.AccountService,
	sessions *session.Manager,
	logger *slog.Logger,
) *CommentHandler {
	return &CommentHandler{comments: comments, accounts: accounts, sessions: sessions, logger: logger}
}

// HandleList returns comments.
//
// HTTP: GET /api/comments?postId=N → that post's thread, oldest first.
// Without postId → every comment, newest first.
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	postIDParam := strings.TrimSpace(r.URL.Query().Get("postId"))

	if postIDParam == "" {
		comments, err := h.comments.ListAll(r.Context())
		if err != nil {
			h.logger.Error("listing comments", slog.String("error", err.Error()))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, comments)
		return
	}

	postID, err := strconv.ParseInt(postIDParam, 10, 64)
	if err != nil || postID <= 0 {
		writeError(w, apperror.ValidationFailed("postId", "postId is required"))
		return
	}

	comments, err := h.comments.ListByPost(r.Context(), postID)
	if err != nil {
		h.logger.Error("listing post comments", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HandleCreate stores a new comment on an existing post.
//
// HTTP: POST /api/comments {postId, text}
// 400 when postId is not a valid identifier or text is empty, 404 when the
// post does not exist. The user label is server-derived, like Post.Author.
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	// PostID is `any`: deployed frontends have sent it both as a JSON
	// number and as a string, and both must keep working.
	var req struct {
		PostID any    `json:"postId"`
		Text   string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	postID, ok := parsePostID(req.PostID)
	if !ok {
		writeError(w, apperror.ValidationFailed("postId", "postId is required"))
		return
	}

	user := h.accounts.DisplayName(r.Context(), h.sessions.FromRequest(w, r))
	comment, err := h.comments.Create(r.Context(), user, postID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// parsePostID coerces a decoded JSON value into a positive post id.
func parsePostID(v any) (int64, bool) {
	switch id := v.(type) {
	case float64: // encoding/json decodes JSON numbers into float64
		n := int64(id)
		if float64(n) != id || n <= 0 {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
