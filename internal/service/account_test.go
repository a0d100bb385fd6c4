package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ymatsu/zange-board/internal/apperror"
	"github.com/ymatsu/zange-board/internal/auth"
	"github.com/ymatsu/zange-board/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory repository.UserRepository. A plain fake (no
// mock framework) keeps the tests readable — what it does is on the page.
type fakeUserRepo struct {
	byEmail map[string]*model.User
	byID    map[int64]*model.User
	nextID  int64
	// set to a non-nil error to simulate a storage failure
	createErr error
	lookupErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*model.User),
		byID:    make(map[int64]*model.User),
		nextID:  1,
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byEmail[user.Email]; exists {
		return apperror.Conflict("already exists")
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now().UTC()
	stored := *user
	f.byEmail[user.Email] = &stored
	f.byID[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, candidates []string) (*model.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, email := range candidates {
		if u, ok := f.byEmail[email]; ok {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user not found")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return apperror.NotFound("user not found")
	}
	u.PasswordHash = hash
	return nil
}

// fakeSession records bind/clear calls in memory.
type fakeSession struct {
	userID    int64
	bound     bool
	permanent bool
	cleared   bool
}

func (f *fakeSession) Bind(userID int64, permanent bool) error {
	f.userID = userID
	f.bound = true
	f.permanent = permanent
	f.cleared = false
	return nil
}

func (f *fakeSession) Clear() {
	f.bound = false
	f.cleared = true
}

func (f *fakeSession) Resolve() (int64, bool) {
	if !f.bound {
		return 0, false
	}
	return f.userID, true
}

func newTestAccountService(repo *fakeUserRepo) *AccountService {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	// bcrypt.MinCost keeps the candidate-verification loops fast.
	return NewAccountService(repo, auth.NewPasswordServiceWithCost(bcrypt.MinCost), logger)
}

// signupUser registers an account through the real signup path.
func signupUser(t *testing.T, svc *AccountService, email, password, nickname string) *model.PublicUser {
	t.Helper()
	user, err := svc.Signup(context.Background(), &fakeSession{}, email, password, nickname)
	if err != nil {
		t.Fatalf("Signup(%q) error = %v", email, err)
	}
	return user
}

// =========================================================================
// SIGNUP TESTS
// =========================================================================

func TestSignup_StoresCanonicalForms(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(repo)
	sess := &fakeSession{}

	user, err := svc.Signup(context.Background(), sess, " A@Example.com　", "password1 ", "  yuki ")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if user.Email != "a@example.com" {
		t.Errorf("Email = %q, want canonical %q", user.Email, "a@example.com")
	}
	if user.Nickname != "yuki" {
		t.Errorf("Nickname = %q, want trimmed %q", user.Nickname, "yuki")
	}
	if user.ID == 0 || user.CreatedAt.IsZero() {
		t.Errorf("Signup() returned incomplete user %+v", user)
	}

	// The stored hash must be of the NORMALIZED password.
	stored := repo.byEmail["a@example.com"]
	if stored == nil {
		t.Fatal("user not stored under canonical email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password1")); err != nil {
		t.Error("stored hash does not verify against the normalized password")
	}

	// Signup binds a non-permanent session.
	if !sess.bound || sess.userID != user.ID {
		t.Error("Signup() did not bind the session to the new user")
	}
	if sess.permanent {
		t.Error("Signup() session should not be permanent")
	}
}

func TestSignup_Validation(t *testing.T) {
	svc := newTestAccountService(newFakeUserRepo())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "password1"},
		{"whitespace-only email", "　  ", "password1"},
		{"empty password", "a@example.com", ""},
		{"whitespace-only password", "a@example.com", " ​ "},
		{"seven runes", "a@example.com", "1234567"},
		{"seven runes after trim", "a@example.com", " 1234567 "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &fakeSession{}
			_, err := svc.Signup(context.Background(), sess, tt.email, tt.password, "")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Signup() error = %v, want ErrValidation", err)
			}
			if sess.bound {
				t.Error("Signup() bound a session despite failing validation")
			}
		})
	}
}

func TestSignup_PasswordOverBcryptLimit(t *testing.T) {
	svc := newTestAccountService(newFakeUserRepo())

	_, err := svc.Signup(context.Background(), &fakeSession{}, "a@example.com", strings.Repeat("x", 80), "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Signup() error = %v, want ErrValidation for >72-byte password", err)
	}
}

func TestSignup_DuplicateCanonicalEmail(t *testing.T) {
	svc := newTestAccountService(newFakeUserRepo())

	signupUser(t, svc, "x@y.com", "password1", "")

	// Canonically equal, differently typed.
	sess := &fakeSession{}
	_, err := svc.Signup(context.Background(), sess, "X@Y.com", "password1", "")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Signup() error = %v, want ErrConflict", err)
	}
	if sess.bound {
		t.Error("failed Signup() must not bind a session")
	}
}

// =========================================================================
// LOGIN / MATCHER TESTS
// =========================================================================

func TestLogin_ExactCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(repo)
	created := signupUser(t, svc, "a@example.com", "password1", "")

	sess := &fakeSession{}
	user, err := svc.Login(context.Background(), sess, "a@example.com", "password1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("Login() = user %d, want %d", user.ID, created.ID)
	}
	if !sess.bound || !sess.permanent {
		t.Error("Login() must bind a permanent session")
	}
}

func TestLogin_EmailCaseAndWhitespaceInsensitive(t *testing.T) {
	svc := newTestAccountService(newFakeUserRepo())
	signupUser(t, svc, "A@Example.com ", "password1", "")

	// Stored canonically; any confusable variant of the email resolves it.
	variants := []string{
		"a@example.com",
		" A@EXAMPLE.COM ",
		"　a@example.com",
		"a@exam​ple.com",
	}
	for _, email := range variants {
		if _, err := svc.Login(context.Background(), &fakeSession{}, email, "password1"); err != nil {
			t.Errorf("Login(%q) error = %v, want success", email, err)
		}
	}
}

func TestLogin_PasswordWithTrailingConfusableWhitespace(t *testing.T) {
	svc := newTestAccountService(newFakeUserRepo())
	signupUser(t, svc, "a@example.com", "password1", "")

	// Raw candidate fails, normalized candidate matches.
	if _, err := svc.Login(context.Background(), &fakeSession{}, "a@example.com", "password1 "); err != nil {
		t.Errorf("Login() with trailing NBSP error = %v, want success", err)
	}
}

func TestLogin_LegacyRow(t *testing.T) {
	// A row written before normalization existed: email stored with its
	// original casing, hash computed from the un-normalized password.
	repo := newFakeUserRepo()
	svc := newTestAccountService(repo)

	rawPassword := " Secret99 "
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	legacy := &model.User{Email: "Old@Example.com", PasswordHash: string(hash)}
	if err := repo.Create(context.Background(), legacy); err != nil {
		t.Fatalf("seeding legacy row: %v", err)
	}

	// The canonical email candidate misses; the raw-trimmed one hits.
	// The raw password candidate verifies against the legacy hash.
	sess := &fakeSession{}
	user, err := svc.Login(context.Background(), sess, "Old@Example.com", rawPassword)
	if err != nil {
		t.Fatalf("Login() against legacy row error = %v", err)
	}
	if user.ID != legacy.ID {
		t.Errorf("Login() = user %d, want legacy row %d", user.ID, legacy.ID)
	}
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	svc := newTestAccountService(newFakeUserRepo())
	signupUser(t, svc, "a@example.com", "password1", "")

	_, errUnknown := svc.Login(context.Background(), &fakeSession{}, "nobody@example.com", "password1")
	_, errWrongPw := svc.Login(context.Background(), &fakeSession{}, "a@example.com", "wrongwrong")

	// Identical failure class and message — no enumeration signal.
	if !errors.Is(errUnknown, apperror.ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", errUnknown)
	}
	if !errors.Is(errWrongPw, apperror.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", errWrongPw)
	}

	var appUnknown, appWrong *apperror.AppError
	if !errors.As(errUnknown, &appUnknown) || !errors.As(errWrongPw, &appWrong) {
		t.Fatal("login failures must be AppErrors")
	}
	if appUnknown.Message != appWrong.Message {
		t.Errorf("failure messages differ: %q vs %q", appUnknown.Message, appWrong.Message)
	}
}

func TestLogin_FailureDoesNotBindSession(t *testing.T) {
	svc := newTestAccountService(newFakeUserRepo())
	signupUser(t, svc, "a@example.com", "password1", "")

	sess := &fakeSession{}
	if _, err := svc.Login(context.Background(), sess, "a@example.com", "wrongwrong"); err == nil {
		t.Fatal("Login() with wrong password should fail")
	}
	if sess.bound {
		t.Error("failed Login() must not bind a session")
	}
}

// =========================================================================
// SESSION RESOLUTION TESTS
// =========================================================================

func TestCurrentUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(repo)
	created := signupUser(t, svc, "a@example.com", "password1", "yuki")

	t.Run("anonymous", func(t *testing.T) {
		user, err := svc.CurrentUser(context.Background(), &fakeSession{})
		if err != nil || user != nil {
			t.Errorf("CurrentUser() = (%v, %v), want (nil, nil)", user, err)
		}
	})

	t.Run("bound", func(t *testing.T) {
		sess := &fakeSession{}
		sess.Bind(created.ID, true)
		user, err := svc.CurrentUser(context.Background(), sess)
		if err != nil {
			t.Fatalf("CurrentUser() error = %v", err)
		}
		if user == nil || user.ID != created.ID {
			t.Errorf("CurrentUser() = %+v, want user %d", user, created.ID)
		}
	})

	t.Run("stale session", func(t *testing.T) {
		sess := &fakeSession{}
		sess.Bind(9999, true) // user no longer exists
		user, err := svc.CurrentUser(context.Background(), sess)
		if err != nil || user != nil {
			t.Errorf("CurrentUser() = (%v, %v), want (nil, nil) for stale cookie", user, err)
		}
	})
}

func TestLogout(t *testing.T) {
	svc := newTestAccountService(newFakeUserRepo())

	sess := &fakeSession{}
	sess.Bind(1, true)
	svc.Logout(sess)
	if !sess.cleared {
		t.Error("Logout() did not clear the session")
	}
}

func TestDisplayName(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(repo)

	withNick := signupUser(t, svc, "nick@example.com", "password1", "yuki")
	withoutNick := signupUser(t, svc, "plain@example.com", "password1", "")

	t.Run("nickname wins", func(t *testing.T) {
		sess := &fakeSession{}
		sess.Bind(withNick.ID, true)
		if got := svc.DisplayName(context.Background(), sess); got != "yuki" {
			t.Errorf("DisplayName() = %q, want %q", got, "yuki")
		}
	})

	t.Run("email fallback", func(t *testing.T) {
		sess := &fakeSession{}
		sess.Bind(withoutNick.ID, true)
		if got := svc.DisplayName(context.Background(), sess); got != "plain@example.com" {
			t.Errorf("DisplayName() = %q, want email fallback", got)
		}
	})

	t.Run("anonymous fallback", func(t *testing.T) {
		if got := svc.DisplayName(context.Background(), &fakeSession{}); got != model.AnonymousAuthor {
			t.Errorf("DisplayName() = %q, want %q", got, model.AnonymousAuthor)
		}
	})
}

// =========================================================================
// RESET TESTS
// =========================================================================

func TestResetPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(repo)
	signupUser(t, svc, "a@example.com", "password1", "")

	if err := svc.ResetPassword(context.Background(), "A@Example.com ", "newpassword9"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	// Old password no longer works; new one does.
	if _, err := svc.Login(context.Background(), &fakeSession{}, "a@example.com", "password1"); err == nil {
		t.Error("Login() with the old password should fail after reset")
	}
	if _, err := svc.Login(context.Background(), &fakeSession{}, "a@example.com", "newpassword9"); err != nil {
		t.Errorf("Login() with the new password error = %v", err)
	}
}

func TestResetPassword_Validation(t *testing.T) {
	svc := newTestAccountService(newFakeUserRepo())

	err := svc.ResetPassword(context.Background(), "a@example.com", "short")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("ResetPassword() error = %v, want ErrValidation", err)
	}
}

func TestResetPassword_UnknownEmail(t *testing.T) {
	svc := newTestAccountService(newFakeUserRepo())

	err := svc.ResetPassword(context.Background(), "nobody@example.com", "password1")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ResetPassword() error = %v, want ErrNotFound", err)
	}
}
