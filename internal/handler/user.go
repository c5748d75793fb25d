package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/middleware"
	"github.com/iliyamo/todo-api/internal/service"
	"github.com/iliyamo/todo-api/internal/validator"
)

// UserService is the account use-case surface the handler depends on.
type UserService interface {
	Register(ctx context.Context, email, password string) (service.UserDTO, error)
	Authenticate(ctx context.Context, username, password string) (service.JwtDTO, error)
	Me(ctx context.Context, username string) (service.UserDTO, bool, error)
}

// UserHandler serves registration, login and the current-user endpoint.
type UserHandler struct {
	Users     UserService
	Validator validator.UserValidator
}

func NewUserHandler(users UserService, v validator.UserValidator) *UserHandler {
	if users == nil {
		panic("nil user service passed to NewUserHandler")
	}
	return &UserHandler{Users: users, Validator: v}
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /api/users and POST /api/user/register.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if errs := h.Validator.ValidateCreate(req.Email, req.Password); !errs.Valid() {
		return validationFailed(c, errs)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Register(ctx, req.Email, req.Password)
	if err != nil {
		var ie *service.IdentityError
		if errors.As(err, &ie) {
			c.Logger().Warnf("register %s: %v", req.Email, err)
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "registration failed", "errors": ie.Errors})
		}
		c.Logger().Errorf("register %s: %v", req.Email, err)
		return badRequest(c, "registration failed")
	}
	return c.JSON(http.StatusOK, u)
}

// Login handles POST /api/user/login.  A response without a token is a 401.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Users.Authenticate(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		c.Logger().Errorf("login %s: %v", req.Username, err)
		return badRequest(c, "login failed")
	}
	if res.Token == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return c.JSON(http.StatusOK, res)
}

// Me handles GET /api/user/me behind JWTAuth.
func (h *UserHandler) Me(c echo.Context) error {
	username, _ := c.Get(middleware.ContextUsername).(string)
	if username == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, found, err := h.Users.Me(ctx, username)
	if err != nil {
		c.Logger().Errorf("me %s: %v", username, err)
		return badRequest(c, "could not load user")
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, u)
}
