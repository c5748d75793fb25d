package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/todo-api/internal/config"
	"github.com/iliyamo/todo-api/internal/handler"
	"github.com/iliyamo/todo-api/internal/identity"
	"github.com/iliyamo/todo-api/internal/queue"
	"github.com/iliyamo/todo-api/internal/repository"
	"github.com/iliyamo/todo-api/internal/router"
	"github.com/iliyamo/todo-api/internal/service"
	"github.com/iliyamo/todo-api/internal/testutil"
	"github.com/iliyamo/todo-api/internal/utils"
	"github.com/iliyamo/todo-api/internal/validator"
)

func newServer(t *testing.T, secure bool, opts ...func(*router.Deps)) *echo.Echo {
	t.Helper()
	db := testutil.NewTestDB(t)
	policy := config.PasswordOptions{RequiredLength: 6, RequireDigit: true, RequireLowercase: true, RequireUppercase: true, RequireNonAlphanumeric: true}
	tokens := utils.TokenParams{Secret: "router-secret", Issuer: "todo-api", Audience: "todo-api-clients", TTL: time.Hour}

	tasks := service.NewTaskService(repository.NewTaskRepo(db), queue.NopPublisher{})
	users := service.NewUserService(identity.NewManager(repository.NewUserRepo(db), policy, bcrypt.MinCost), tokens)

	deps := router.Deps{
		Tasks:       handler.NewTaskHandler(tasks, validator.TaskValidator{}),
		Users:       handler.NewUserHandler(users, validator.UserValidator{Policy: policy}),
		DB:          db,
		Tokens:      tokens,
		SecureTasks: secure,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	e := echo.New()
	router.Register(e, deps)
	return e
}

func do(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo) string {
	t.Helper()
	if rec := do(e, http.MethodPost, "/api/users", `{"email":"erin@example.com","password":"Passw0rd!"}`, ""); rec.Code != http.StatusOK {
		t.Fatalf("register = %d %s", rec.Code, rec.Body.String())
	}
	rec := do(e, http.MethodPost, "/api/user/login", `{"username":"erin@example.com","password":"Passw0rd!"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d %s", rec.Code, rec.Body.String())
	}
	var jwt service.JwtDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &jwt); err != nil || jwt.Token == "" || !jwt.IsAuthenticatedUser {
		t.Fatalf("login body %s: %v", rec.Body.String(), err)
	}
	return jwt.Token
}

func TestHealthRoutes(t *testing.T) {
	e := newServer(t, false)
	for _, p := range []string{"/health", "/healthz"} {
		if rec := do(e, http.MethodGet, p, "", ""); rec.Code != http.StatusOK {
			t.Errorf("%s = %d", p, rec.Code)
		}
	}
}

func TestTaskLifecycle(t *testing.T) {
	e := newServer(t, false)
	due := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")

	rec := do(e, http.MethodPost, "/api/todotasks", `{"description":"Write docs","dueDate":"`+due+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}
	var created service.TaskDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	rec = do(e, http.MethodGet, "/api/todotasks/1", "", "")
	var got service.TaskDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if rec.Code != http.StatusOK || got.Description != "Write docs" || !got.DueDate.Equal(*created.DueDate) {
		t.Fatalf("get = %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(e, http.MethodPut, "/api/todotasks/1", `{"id":1,"isComplete":true}`, ""); rec.Code != http.StatusOK {
		t.Fatalf("update = %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodPut, "/api/todotasks/2", `{"id":2,"isComplete":true}`, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("update missing = %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/api/todotasks", "", "")
	var all []service.TaskDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &all)
	if len(all) != 1 || !all[0].IsComplete {
		t.Fatalf("list = %s", rec.Body.String())
	}

	if rec := do(e, http.MethodDelete, "/api/todotasks/1", "", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/todotasks/1", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", rec.Code)
	}
	if rec := do(e, http.MethodDelete, "/api/todotasks/1", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("delete again = %d", rec.Code)
	}
}

func TestUserRoutes(t *testing.T) {
	e := newServer(t, false)
	token := login(t, e)

	if rec := do(e, http.MethodPost, "/api/user/register", `{"email":"erin@example.com","password":"Passw0rd!"}`, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register = %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/api/user/login", `{"username":"erin@example.com","password":"nope"}`, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login = %d", rec.Code)
	}

	rec := do(e, http.MethodGet, "/api/user/me", "", token)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"email":"erin@example.com"`) {
		t.Errorf("me = %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodGet, "/api/user/me", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("me without token = %d", rec.Code)
	}
}

func TestSecureTasksRequireToken(t *testing.T) {
	e := newServer(t, true)
	if rec := do(e, http.MethodGet, "/api/todotasks", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list = %d", rec.Code)
	}
	token := login(t, e)
	if rec := do(e, http.MethodGet, "/api/todotasks", "", token); rec.Code != http.StatusOK {
		t.Fatalf("authenticated list = %d", rec.Code)
	}
}

func TestTaskRoutes_NonPositiveIDsAreNotFound(t *testing.T) {
	e := newServer(t, false)
	for _, id := range []string{"0", "-3"} {
		path := "/api/todotasks/" + id
		if rec := do(e, http.MethodGet, path, "", ""); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d %s", path, rec.Code, rec.Body.String())
		}
		if rec := do(e, http.MethodPut, path, `{"id":`+id+`,"isComplete":true}`, ""); rec.Code != http.StatusNotFound {
			t.Errorf("PUT %s = %d %s", path, rec.Code, rec.Body.String())
		}
		if rec := do(e, http.MethodDelete, path, "", ""); rec.Code != http.StatusNotFound {
			t.Errorf("DELETE %s = %d %s", path, rec.Code, rec.Body.String())
		}
	}
	if rec := do(e, http.MethodGet, "/api/todotasks/abc", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("GET /api/todotasks/abc = %d", rec.Code)
	}
}
