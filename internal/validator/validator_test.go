package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/todo-api/internal/config"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

var noon = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func datePtr(t time.Time) *time.Time { return &t }

func TestTaskValidator_Valid(t *testing.T) {
	v := TaskValidator{Now: fixedClock(noon)}
	cases := map[string]*time.Time{
		"no due date":       nil,
		"tomorrow":          datePtr(noon.AddDate(0, 0, 1)),
		"tomorrow midnight": datePtr(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)),
		"next year":         datePtr(noon.AddDate(1, 0, 0)),
	}
	for name, due := range cases {
		t.Run(name, func(t *testing.T) {
			if errs := v.ValidateCreate("description", due); !errs.Valid() {
				t.Fatalf("unexpected errors: %v", errs)
			}
		})
	}
	if errs := v.ValidateCreate(strings.Repeat("*", 750), nil); !errs.Valid() {
		t.Fatalf("750 characters should be accepted: %v", errs)
	}
}

func TestTaskValidator_Description(t *testing.T) {
	v := TaskValidator{Now: fixedClock(noon)}
	for _, desc := range []string{"", "                  ", "\t\n", strings.Repeat("*", 751), strings.Repeat("é", 800), strings.Repeat("*", 8000)} {
		errs := v.ValidateCreate(desc, datePtr(noon.AddDate(0, 0, 1)))
		if len(errs["description"]) == 0 {
			t.Errorf("ValidateCreate(len=%d) has no description error", len(desc))
		}
		if _, ok := errs["dueDate"]; ok {
			t.Errorf("unexpected dueDate error for valid date: %v", errs)
		}
	}
}

func TestTaskValidator_DueDateNotAfterToday(t *testing.T) {
	v := TaskValidator{Now: fixedClock(noon)}
	cases := map[string]time.Time{
		"five days ago":   noon.AddDate(0, 0, -5),
		"yesterday":       noon.AddDate(0, 0, -1),
		"today midnight":  time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		"today later":     time.Date(2026, 10, 15, 23, 59, 0, 0, time.UTC),
		"today in +05:00": time.Date(2026, 10, 16, 1, 0, 0, 0, time.FixedZone("x", 5*3600)),
	}
	for name, due := range cases {
		t.Run(name, func(t *testing.T) {
			errs := v.ValidateCreate("description", &due)
			if len(errs["dueDate"]) == 0 {
				t.Fatalf("expected dueDate error, got %v", errs)
			}
		})
	}
}

func TestTaskValidator_ReportsAllViolations(t *testing.T) {
	v := TaskValidator{Now: fixedClock(noon)}
	errs := v.ValidateCreate(" ", datePtr(noon.AddDate(0, 0, -1)))
	if len(errs) != 2 {
		t.Fatalf("expected description and dueDate errors, got %v", errs)
	}
	if !strings.Contains(errs.Error(), "cannot be in the past") {
		t.Errorf("Error() = %q", errs.Error())
	}
}

var policy = config.PasswordOptions{
	RequiredLength:         6,
	RequireDigit:           true,
	RequireLowercase:       true,
	RequireUppercase:       true,
	RequireNonAlphanumeric: true,
}

func TestUserValidator(t *testing.T) {
	v := UserValidator{Policy: policy}
	cases := []struct {
		name     string
		email    string
		password string
		fields   []string
	}{
		{"valid", "user@example.com", "Passw0rd!", nil},
		{"empty email", "", "Passw0rd!", []string{"email"}},
		{"bad email", "user.example.com", "Passw0rd!", []string{"email"}},
		{"long email", strings.Repeat("a", 251) + "@x.com", "Passw0rd!", []string{"email"}},
		{"weak password", "test@test.com", "test password", []string{"password"}},
		{"short password", "test@test.com", "P0!a", []string{"password"}},
		{"colon is not a symbol", "test@test.com", "Passw0rd:", []string{"password"}},
		{"both", "nope", "", []string{"email", "password"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := v.ValidateCreate(tc.email, tc.password)
			if len(errs) != len(tc.fields) {
				t.Fatalf("errors = %v, want fields %v", errs, tc.fields)
			}
			for _, f := range tc.fields {
				if len(errs[f]) == 0 {
					t.Errorf("missing error for %s: %v", f, errs)
				}
			}
		})
	}
}

func TestUserValidator_CollectsEveryPasswordRule(t *testing.T) {
	errs := UserValidator{Policy: policy}.ValidateCreate("a@b.c", "abc")
	// too short, no upper, no digit, no symbol
	if got := len(errs["password"]); got != 4 {
		t.Fatalf("password errors = %v", errs["password"])
	}
}
