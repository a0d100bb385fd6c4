package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ymatsu/zange-board/internal/apperror"
	"github.com/ymatsu/zange-board/internal/model"
	"github.com/ymatsu/zange-board/internal/repository"
)

// DefaultScope is applied when the client sends no scope.
const DefaultScope = "public"

// PostService handles board posts.
type PostService struct {
	posts  repository.PostRepository
	logger *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(posts repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{posts: posts, logger: logger}
}

// PostInput is the client-supplied portion of a post. The author is NOT
// part of it — it is always derived server-side from the session.
type PostInput struct {
	Text   string
	Target string
	Tag    string
	Bg     string
	Scope  string
}

// Create validates and stores a new post under the given author name.
func (s *PostService) Create(ctx context.Context, author string, in PostInput) (*model.Post, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "text is required")
	}

	scope := strings.TrimSpace(in.Scope)
	if scope == "" {
		scope = DefaultScope
	}

	post := &model.Post{
		Text:   text,
		Author: author,
		Target: strings.TrimSpace(in.Target),
		Tag:    strings.TrimSpace(in.Tag),
		Bg:     strings.TrimSpace(in.Bg),
		Scope:  scope,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("postID", post.ID),
		slog.String("author", post.Author),
	)

	return post, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts: %w", err)
	}
	return posts, nil
}
