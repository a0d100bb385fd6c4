package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ymatsu/zange-board/internal/model"
	"github.com/ymatsu/zange-board/internal/repository"
)

// CommentDB is the comments-table view of the database.
type CommentDB struct {
	db *DB
}

var _ repository.CommentRepository = (*CommentDB)(nil)

// Quoted because "user" would otherwise parse as a keyword in some engines;
// the column name is kept for compatibility with the existing data files.
const commentColumns = `id, post_id, "user", text, created_at`

// Create inserts a comment and fills in ID and CreatedAt. The service layer
// checks that the post exists first; the foreign key is the backstop.
func (c *CommentDB) Create(ctx context.Context, comment *model.Comment) error {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	res, err := c.db.conn.ExecContext(ctx,
		`INSERT INTO comments (post_id, "user", text, created_at)
		 VALUES (?, ?, ?, ?)`,
		comment.PostID,
		comment.User,
		comment.Text,
		formatTime(comment.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment for post %d: %w", comment.PostID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new comment id: %w", err)
	}
	comment.ID = id

	return nil
}

// ListByPost returns the comments on one post, oldest first — the reading
// order of a thread.
func (c *CommentDB) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	return c.list(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE post_id = ?
		 ORDER BY created_at ASC, id ASC`, postID)
}

// ListAll returns every comment, newest first.
func (c *CommentDB) ListAll(ctx context.Context) ([]model.Comment, error) {
	return c.list(ctx,
		`SELECT `+commentColumns+` FROM comments
		 ORDER BY created_at DESC, id DESC`)
}

func (c *CommentDB) list(ctx context.Context, query string, args ...any) ([]model.Comment, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()

	rows, err := c.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var (
			comment   model.Comment
			createdAt string
		)
		if err := rows.Scan(&comment.ID, &comment.PostID, &comment.User,
			&comment.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		comment.CreatedAt = parseTime(createdAt)
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}
