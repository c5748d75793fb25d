// Package validator performs field-level validation of request payloads
// before any business logic runs.  Every rule is evaluated so that all
// violations surface together.
package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/todo-api/internal/config"
	"github.com/iliyamo/todo-api/internal/model"
)

// Errors maps a JSON field name to its violation messages.  An empty map
// means the payload is valid.
type Errors map[string][]string

// Add records msg against field.
func (e Errors) Add(field, msg string) { e[field] = append(e[field], msg) }

// Valid reports whether no violation was recorded.
func (e Errors) Valid() bool { return len(e) == 0 }

// Error joins every message, fields in alphabetical order.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var parts []string
	for _, f := range fields {
		parts = append(parts, strings.Join(e[f], "; "))
	}
	return strings.Join(parts, "; ")
}

// TaskValidator validates task creation requests.  Now is the clock used
// for the due date rule; nil means time.Now.
type TaskValidator struct {
	Now func() time.Time
}

// ValidateCreate checks description and dueDate.
//
//   - description must contain a non-whitespace character and be at most
//     model.MaxDescriptionLength characters long.
//   - dueDate, when present, must fall on a later calendar day (UTC) than
//     today; the time of day is ignored.
func (v TaskValidator) ValidateCreate(description string, dueDate *time.Time) Errors {
	errs := Errors{}

	if strings.TrimSpace(description) == "" {
		errs.Add("description", "'description' must not be empty.")
	}
	if n := utf8.RuneCountInString(description); n > model.MaxDescriptionLength {
		errs.Add("description", fmt.Sprintf("The length of 'description' must be %d characters or fewer. You entered %d characters.", model.MaxDescriptionLength, n))
	}

	if dueDate != nil {
		now := time.Now
		if v.Now != nil {
			now = v.Now
		}
		if !startOfDay(*dueDate).After(startOfDay(now())) {
			errs.Add("dueDate", "'dueDate' cannot be in the past")
		}
	}
	return errs
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const maxEmailLength = 256

var (
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)
	upperPattern  = regexp.MustCompile(`[A-Z]+`)
	lowerPattern  = regexp.MustCompile(`[a-z]+`)
	digitPattern  = regexp.MustCompile(`\d+`)
	symbolPattern = regexp.MustCompile(`[^a-zA-Z\d\s:]+`)
)

// UserValidator validates registration requests against the password
// policy.
type UserValidator struct {
	Policy config.PasswordOptions
}

// ValidateCreate checks email and password.
func (v UserValidator) ValidateCreate(email, password string) Errors {
	errs := Errors{}

	switch {
	case strings.TrimSpace(email) == "":
		errs.Add("email", "'email' must not be empty.")
	case !emailPattern.MatchString(email):
		errs.Add("email", "'email' is not a valid email address.")
	}
	if n := utf8.RuneCountInString(email); n > maxEmailLength {
		errs.Add("email", fmt.Sprintf("The length of 'email' must be %d characters or fewer. You entered %d characters.", maxEmailLength, n))
	}

	p := v.Policy
	if n := utf8.RuneCountInString(password); n < p.RequiredLength {
		errs.Add("password", fmt.Sprintf("The length of 'password' must be at least %d characters. You entered %d characters.", p.RequiredLength, n))
	}
	if p.RequireUppercase && !upperPattern.MatchString(password) {
		errs.Add("password", "'password' must contain at least one uppercase letter")
	}
	if p.RequireLowercase && !lowerPattern.MatchString(password) {
		errs.Add("password", "'password' must contain at least one lowercase letter")
	}
	if p.RequireDigit && !digitPattern.MatchString(password) {
		errs.Add("password", "'password' must contain at least one number")
	}
	if p.RequireNonAlphanumeric && !symbolPattern.MatchString(password) {
		errs.Add("password", "'password' must contain at least one symbol")
	}
	return errs
}
