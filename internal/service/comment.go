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

// CommentService handles comments on posts.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	logger   *slog.Logger
}

// NewCommentService creates a CommentService. It needs the post repository
// too: a comment may only be created against an existing post.
func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{comments: comments, posts: posts, logger: logger}
}

// Create validates and stores a comment under the given user name.
//
// Validation order matters for the API contract: missing text is a
// validation failure regardless of whether the post exists; a missing post
// is only reported once text is present.
func (s *CommentService) Create(ctx context.Context, user string, postID int64, text string) (*model.Comment, error) {
	if postID <= 0 {
		return nil, apperror.ValidationFailed("postId", "postId is required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "text is required")
	}

	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("service/comment: checking post %d: %w", postID, err)
	}
	if !exists {
		return nil, apperror.NotFound("post not found")
	}

	comment := &model.Comment{
		PostID: postID,
		User:   user,
		Text:   text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/comment: creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.Int64("commentID", comment.ID),
		slog.Int64("postID", postID),
	)

	return comment, nil
}

// ListByPost returns one post's comments, oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("service/comment: listing comments for post %d: %w", postID, err)
	}
	return comments, nil
}

// ListAll returns every comment, newest first.
func (s *CommentService) ListAll(ctx context.Context) ([]model.Comment, error) {
	comments, err := s.comments.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/comment: listing comments: %w", err)
	}
	return comments, nil
}
