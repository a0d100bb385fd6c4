// Package service contains the business logic layer.
//
// Handlers parse HTTP and write responses; services enforce the rules and
// orchestrate; repositories persist. Services accept primitives and a
// session handle — never *http.Request — so they are callable from tests
// (and anything else) without a simulated request context.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ymatsu/zange-board/internal/apperror"
	"github.com/ymatsu/zange-board/internal/auth"
	"github.com/ymatsu/zange-board/internal/model"
	"github.com/ymatsu/zange-board/internal/normalize"
	"github.com/ymatsu/zange-board/internal/repository"
	"github.com/ymatsu/zange-board/internal/session"
)

// MinPasswordLength is the minimum password length in runes, measured on the
// normalized form.
const MinPasswordLength = 8

// maxPasswordBytes is bcrypt's input ceiling. Checked at validation time so
// an over-long password is a 400, not a 500 out of the hash function.
const maxPasswordBytes = 72

// AccountService orchestrates signup, login, and session resolution.
//
// LOGIN COMPATIBILITY:
// The store contains rows written under several generations of
// normalization rules — emails stored with their original casing, hashes
// computed from un-normalized passwords. Login therefore never does a
// single lookup + single verify: it walks the ordered candidate lists from
// internal/normalize (the single source of truth for those lists) so every
// historical row stays reachable. Signup, by contrast, always writes the
// current canonical forms.
type AccountService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAccountService creates an AccountService with its dependencies.
func NewAccountService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Signup registers a new account and binds the session to it.
//
// Signup has no candidate fan-out: the canonical email and the hash of the
// normalized password are stored, full stop. Rows created today must be
// findable by a plain canonical lookup forever after.
func (s *AccountService) Signup(ctx context.Context, sess session.Session, rawEmail, rawPassword, rawNickname string) (*model.PublicUser, error) {
	email := normalize.Email(rawEmail)
	password := normalize.Password(rawPassword)

	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password", "password too short")
	}
	if len(password) > maxPasswordBytes {
		return nil, apperror.ValidationFailed("password", "password too long")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/account: hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Nickname:     strings.TrimSpace(rawNickname),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Duplicate canonical email surfaces as apperror.ErrConflict.
		return nil, fmt.Errorf("service/account: creating user: %w", err)
	}

	// A fresh signup gets a browser-session cookie; only login marks the
	// session permanent.
	if err := sess.Bind(user.ID, false); err != nil {
		return nil, fmt.Errorf("service/account: binding session for user %d: %w", user.ID, err)
	}

	s.logger.Info("user signed up",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user.Public(), nil
}

// Login authenticates raw credentials and binds a permanent session.
//
// This is the credential matcher:
//
//  1. Resolve a user row by trying each email candidate in order —
//     canonical form first (current-era rows), raw-trimmed form second
//     (legacy rows). First hit wins; store uniqueness guarantees at most
//     one row per candidate.
//  2. Verify each password candidate against the row's hash in order —
//     raw first (legacy hashes), normalized second. First match wins.
//
// Both failure modes — unknown email and wrong password — return the same
// InvalidCredentials error so the response gives no account-enumeration
// signal.
func (s *AccountService) Login(ctx context.Context, sess session.Session, rawEmail, rawPassword string) (*model.PublicUser, error) {
	user, err := s.users.GetByEmail(ctx, normalize.EmailCandidates(rawEmail))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/account: looking up login email: %w", err)
	}

	verified := false
	for _, candidate := range normalize.PasswordCandidates(rawPassword) {
		err := s.passwords.Verify(user.PasswordHash, candidate)
		if err == nil {
			verified = true
			break
		}
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			// Operational failure (e.g. a corrupt hash column). Still an
			// authentication failure for the caller, but worth a log line.
			s.logger.Warn("password verification failed abnormally",
				slog.Int64("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	if !verified {
		return nil, apperror.InvalidCredentials()
	}

	if err := sess.Bind(user.ID, true); err != nil {
		return nil, fmt.Errorf("service/account: binding session for user %d: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))

	return user.Public(), nil
}

// Logout clears the session. Always succeeds, even when anonymous.
func (s *AccountService) Logout(sess session.Session) {
	sess.Clear()
}

// CurrentUser resolves the session to its user record. Returns (nil, nil)
// when the request is anonymous or the session points at a vanished row —
// a stale cookie is not an error.
func (s *AccountService) CurrentUser(ctx context.Context, sess session.Session) (*model.PublicUser, error) {
	userID, ok := sess.Resolve()
	if !ok {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service/account: resolving session user %d: %w", userID, err)
	}

	return user.Public(), nil
}

// DisplayName returns the author label for the session's user: nickname,
// else email, else the anonymous label. Lookup failures also fall back to
// anonymous — posting must not break because a session went stale.
func (s *AccountService) DisplayName(ctx context.Context, sess session.Session) string {
	userID, ok := sess.Resolve()
	if !ok {
		return model.AnonymousAuthor
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.AnonymousAuthor
	}
	return user.DisplayName()
}

// ResetPassword is the explicit credential-reset operation, reachable only
// through the admin-gated surface. It accepts legacy email forms (support
// resets are mostly for exactly those accounts) but always stores a hash of
// the normalized new password.
func (s *AccountService) ResetPassword(ctx context.Context, rawEmail, rawPassword string) error {
	password := normalize.Password(rawPassword)
	if password == "" {
		return apperror.ValidationFailed("password", "email and password required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperror.ValidationFailed("password", "password too short")
	}
	if len(password) > maxPasswordBytes {
		return apperror.ValidationFailed("password", "password too long")
	}

	user, err := s.users.GetByEmail(ctx, normalize.EmailCandidates(rawEmail))
	if err != nil {
		return fmt.Errorf("service/account: looking up reset email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("service/account: hashing reset password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("service/account: resetting password for user %d: %w", user.ID, err)
	}

	s.logger.Info("password reset", slog.Int64("userID", user.ID))
	return nil
}
