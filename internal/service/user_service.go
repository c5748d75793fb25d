package service

import (
	"context"
	"time"

	"github.com/iliyamo/todo-api/internal/identity"
	"github.com/iliyamo/todo-api/internal/utils"
)

// UserService handles registration and authentication.
type UserService struct {
	manager *identity.Manager
	tokens  utils.TokenParams
}

func NewUserService(manager *identity.Manager, tokens utils.TokenParams) *UserService {
	return &UserService{manager: manager, tokens: tokens}
}

// Register creates a user whose username is email.  Policy and uniqueness
// violations are returned as *IdentityError.
func (s *UserService) Register(ctx context.Context, email, password string) (UserDTO, error) {
	u, res, err := s.manager.Create(ctx, email, password)
	if err != nil {
		return UserDTO{}, err
	}
	if !res.Succeeded() {
		return UserDTO{}, &IdentityError{Username: email, Errors: res.Errors}
	}
	return toUserDTO(u), nil
}

// Authenticate checks the credentials and, when they match, issues an access
// token.  A failed check is not an error: the returned JwtDTO simply has an
// empty token.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (JwtDTO, error) {
	u, err := s.manager.FindByName(ctx, username)
	if err != nil {
		return JwtDTO{}, err
	}
	if u == nil || !s.manager.CheckPassword(u, password) {
		return JwtDTO{}, nil
	}
	tok, err := utils.NewAccessToken(s.tokens, u.UserName)
	if err != nil {
		return JwtDTO{}, err
	}
	return JwtDTO{Token: tok.Token, Expiry: tok.Exp, IsAuthenticatedUser: tok.Token != ""}, nil
}

// Me returns the public projection of the named user, or false when the
// user no longer exists.
func (s *UserService) Me(ctx context.Context, username string) (UserDTO, bool, error) {
	u, err := s.manager.FindByName(ctx, username)
	if err != nil || u == nil {
		return UserDTO{}, false, err
	}
	return toUserDTO(u), true, nil
}

// TokenTTL converts a configured hour count to a token lifetime.
func TokenTTL(hours int) time.Duration {
	return time.Duration(hours) * time.Hour
}
