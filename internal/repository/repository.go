// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/ymatsu/zange-board/internal/model"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create inserts a new user. The email must already be in canonical
	// form — uniqueness is enforced on the exact stored string, and a
	// duplicate fails with apperror.ErrConflict.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail tries each candidate email in order and returns the first
	// matching row, or apperror.ErrNotFound if none match. Candidate order
	// is significant: callers put the current canonical form first and
	// legacy forms after it.
	GetByEmail(ctx context.Context, candidates []string) (*model.User, error)

	// GetByID returns the user with the given id, or apperror.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// UpdatePasswordHash replaces the stored hash for the given user.
	// This is the only way a credential changes after signup.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// PostRepository stores board posts. Posts are never updated or deleted.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// List returns all posts, newest first.
	List(ctx context.Context) ([]model.Post, error)
	// Exists reports whether a post with the given id exists.
	Exists(ctx context.Context, id int64) (bool, error)
}

// CommentRepository stores comments attached to posts.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	// ListByPost returns the comments for one post, oldest first.
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
	// ListAll returns every comment, newest first.
	ListAll(ctx context.Context) ([]model.Comment, error)
}

// CounterRepository reports row totals for the admin dbcheck endpoint.
type CounterRepository interface {
	Counts(ctx context.Context) (*model.Counts, error)
}
