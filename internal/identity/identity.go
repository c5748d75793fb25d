// Package identity is the credential subsystem.  It owns username
// uniqueness, the password complexity policy and bcrypt hashing; callers
// only see structured results and never touch a password hash.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/todo-api/internal/config"
	"github.com/iliyamo/todo-api/internal/model"
	"github.com/iliyamo/todo-api/internal/repository"
	"github.com/iliyamo/todo-api/internal/utils"
)

// Error is a single policy violation reported by the credential store.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result is the outcome of a credential store write.  An empty Errors slice
// means the write succeeded.
type Result struct {
	Errors []Error
}

// Succeeded reports whether the operation produced no errors.
func (r Result) Succeeded() bool { return len(r.Errors) == 0 }

// UserStore is the persistence the manager depends on.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByUserName(ctx context.Context, normalized string) (*model.User, error)
}

// Manager creates users, looks them up and verifies passwords.
type Manager struct {
	users  UserStore
	policy config.PasswordOptions
	cost   int
}

// NewManager constructs a Manager and panics if users is nil.
func NewManager(users UserStore, policy config.PasswordOptions, bcryptCost int) *Manager {
	if users == nil {
		panic("nil user store passed to identity.NewManager")
	}
	return &Manager{users: users, policy: policy, cost: bcryptCost}
}

// Normalize returns the lookup key for a username or email.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Create registers a new user whose username is its email.  Policy
// violations and uniqueness clashes are reported in the Result; the error
// return is reserved for store failures.
func (m *Manager) Create(ctx context.Context, email, password string) (*model.User, Result, error) {
	email = strings.TrimSpace(email)
	var errs []Error

	if !looksLikeEmail(email) {
		errs = append(errs, Error{"InvalidEmail", fmt.Sprintf("Email '%s' is invalid.", email)})
	} else {
		existing, err := m.FindByName(ctx, email)
		if err != nil {
			return nil, Result{}, err
		}
		if existing != nil {
			errs = append(errs, duplicateErrors(email)...)
		}
	}
	errs = append(errs, m.ValidatePassword(password)...)
	if len(errs) > 0 {
		return nil, Result{Errors: errs}, nil
	}

	hash, err := utils.HashPassword(password, m.cost)
	if err != nil {
		return nil, Result{}, fmt.Errorf("hashing password: %w", err)
	}
	u := &model.User{
		UserName:           email,
		NormalizedUserName: Normalize(email),
		Email:              email,
		PasswordHash:       hash,
	}
	if err := m.users.Create(ctx, u); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, Result{Errors: duplicateErrors(email)}, nil
		}
		return nil, Result{}, err
	}
	return u, Result{}, nil
}

// FindByName returns the user with the given username, or nil when there
// is none.  Absence is not an error.
func (m *Manager) FindByName(ctx context.Context, name string) (*model.User, error) {
	u, err := m.users.GetByUserName(ctx, Normalize(name))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CheckPassword reports whether password matches the stored hash of u.
func (m *Manager) CheckPassword(u *model.User, password string) bool {
	if u == nil {
		return false
	}
	return utils.VerifyPassword(u.PasswordHash, password)
}

// ValidatePassword checks password against the configured policy and
// returns every violation.
func (m *Manager) ValidatePassword(password string) []Error {
	var errs []Error
	p := m.policy
	if len(password) < p.RequiredLength {
		errs = append(errs, Error{"PasswordTooShort", fmt.Sprintf("Passwords must be at least %d characters.", p.RequiredLength)})
	}
	if p.RequireNonAlphanumeric && !containsAny(password, func(c rune) bool { return !isLetterOrDigit(c) }) {
		errs = append(errs, Error{"PasswordRequiresNonAlphanumeric", "Passwords must have at least one non alphanumeric character."})
	}
	if p.RequireDigit && !containsAny(password, isDigit) {
		errs = append(errs, Error{"PasswordRequiresDigit", "Passwords must have at least one digit ('0'-'9')."})
	}
	if p.RequireLowercase && !containsAny(password, isLower) {
		errs = append(errs, Error{"PasswordRequiresLower", "Passwords must have at least one lowercase ('a'-'z')."})
	}
	if p.RequireUppercase && !containsAny(password, isUpper) {
		errs = append(errs, Error{"PasswordRequiresUpper", "Passwords must have at least one uppercase ('A'-'Z')."})
	}
	return errs
}

func duplicateErrors(email string) []Error {
	return []Error{
		{"DuplicateUserName", fmt.Sprintf("Username '%s' is already taken.", email)},
		{"DuplicateEmail", fmt.Sprintf("Email '%s' is already taken.", email)},
	}
}

// looksLikeEmail accepts a single '@' that is neither first nor last.
func looksLikeEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at == strings.LastIndexByte(s, '@') && at < len(s)-1
}

func containsAny(s string, pred func(rune) bool) bool {
	for _, c := range s {
		if pred(c) {
			return true
		}
	}
	return false
}

func isDigit(c rune) bool         { return c >= '0' && c <= '9' }
func isLower(c rune) bool         { return c >= 'a' && c <= 'z' }
func isUpper(c rune) bool         { return c >= 'A' && c <= 'Z' }
func isLetterOrDigit(c rune) bool { return isDigit(c) || isLower(c) || isUpper(c) }
