package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ymatsu/zange-board/internal/apperror"
	"github.com/ymatsu/zange-board/internal/model"
	"github.com/ymatsu/zange-board/internal/repository"
)

// UserDB is the users-table view of the database.
type UserDB struct {
	db *DB
}

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

const userColumns = `id, email, password_hash, nickname, created_at`

// Create inserts a new user and fills in ID and CreatedAt.
//
// Uniqueness is enforced by the UNIQUE constraint on the exact stored email
// string — the caller passes the canonical form, and a duplicate surfaces as
// apperror.ErrConflict. We do not pre-check with a SELECT; the constraint is
// the authority and the insert is a single atomic write.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	res, err := u.db.conn.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, nickname, created_at)
		 VALUES (?, ?, ?, ?)`,
		user.Email,
		user.PasswordHash,
		user.Nickname,
		formatTime(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("already exists")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Email, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByEmail tries each candidate email in order — canonical first, legacy
// forms after — and returns the first matching row.
//
// All probes run inside one critical section so a concurrent signup cannot
// interleave between them.
func (u *UserDB) GetByEmail(ctx context.Context, candidates []string) (*model.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()

	for _, email := range candidates {
		if email == "" {
			continue
		}
		found, err := scanUser(u.db.conn.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
		))
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("sqlite: looking up user %q: %w", email, err)
		}
		return found, nil
	}

	return nil, apperror.NotFound("user not found")
}

// GetByID returns the user with the given id.
func (u *UserDB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()

	found, err := scanUser(u.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return found, nil
}

// UpdatePasswordHash replaces the stored hash for one user.
func (u *UserDB) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()

	res, err := u.db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, hash, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating password hash for user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking password update for user %d: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("user not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u         model.User
		createdAt string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Nickname, &createdAt); err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint
// failure. modernc.org/sqlite does not export a typed constant for it, so we
// match the stable message the engine has used forever.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
