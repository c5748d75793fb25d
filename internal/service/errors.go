package service

import (
	"fmt"
	"strings"

	"github.com/iliyamo/todo-api/internal/identity"
)

// NotFoundError reports that the entity named Entity with key Key does not
// exist.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s (%v) was not found", e.Entity, e.Key)
}

// IdentityError carries the credential-policy violations that stopped a
// user from being registered.
type IdentityError struct {
	Username string
	Errors   []identity.Error
}

func (e *IdentityError) Error() string {
	codes := make([]string, 0, len(e.Errors))
	for _, ie := range e.Errors {
		codes = append(codes, ie.Code)
	}
	return fmt.Sprintf("could not register %q: %s", e.Username, strings.Join(codes, ", "))
}
