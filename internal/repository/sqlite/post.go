package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ymatsu/zange-board/internal/model"
	"github.com/ymatsu/zange-board/internal/repository"
)

// PostDB is the posts-table view of the database.
type PostDB struct {
	db *DB
}

var _ repository.PostRepository = (*PostDB)(nil)

const postColumns = `id, text, author, target, tag, bg, scope, created_at`

// Create inserts a post and fills in ID and CreatedAt.
func (p *PostDB) Create(ctx context.Context, post *model.Post) error {
	p.db.mu.Lock()
	defer p.db.mu.Unlock()

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	res, err := p.db.conn.ExecContext(ctx,
		`INSERT INTO posts (text, author, target, tag, bg, scope, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		post.Text,
		post.Author,
		post.Target,
		post.Tag,
		post.Bg,
		post.Scope,
		formatTime(post.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new post id: %w", err)
	}
	post.ID = id

	return nil
}

// List returns all posts, newest first. Ties on created_at break on id so
// rows inserted within the same instant keep a deterministic order.
func (p *PostDB) List(ctx context.Context) ([]model.Post, error) {
	p.db.mu.Lock()
	defer p.db.mu.Unlock()

	rows, err := p.db.conn.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var (
			post      model.Post
			createdAt string
		)
		if err := rows.Scan(&post.ID, &post.Text, &post.Author, &post.Target,
			&post.Tag, &post.Bg, &post.Scope, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post: %w", err)
		}
		post.CreatedAt = parseTime(createdAt)
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// Exists reports whether the post with the given id exists.
func (p *PostDB) Exists(ctx context.Context, id int64) (bool, error) {
	p.db.mu.Lock()
	defer p.db.mu.Unlock()

	var one int
	err := p.db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM posts WHERE id = ?`, id,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking post %d: %w", id, err)
	}
	return true, nil
}
