package sqlite

import (
	"context"
	"fmt"

	"github.com/ymatsu/zange-board/internal/model"
	"github.com/ymatsu/zange-board/internal/repository"
)

var _ repository.CounterRepository = (*DB)(nil)

// Counts returns row totals per table, for the admin dbcheck endpoint.
func (db *DB) Counts(ctx context.Context) (*model.Counts, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var c model.Counts
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(*) FROM comments)
	`).Scan(&c.Users, &c.Posts, &c.Comments)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting rows: %w", err)
	}

	return &c, nil
}
