package service

import (
	"time"

	"github.com/iliyamo/todo-api/internal/model"
)

// TaskDTO is the public JSON shape of a task.
type TaskDTO struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	IsComplete  bool       `json:"isComplete"`
}

// UserDTO is the public projection of a user; credentials never leave the
// service layer.
type UserDTO struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

// JwtDTO is the result of an authentication attempt.  An empty Token means
// the attempt failed.
type JwtDTO struct {
	Token               string    `json:"token"`
	Expiry              time.Time `json:"expiry"`
	IsAuthenticatedUser bool      `json:"isAuthenticatedUser"`
}

func toTaskDTO(t *model.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		Description: t.Description,
		DueDate:     t.DueDate,
		IsComplete:  t.IsComplete,
	}
}

func toTaskDTOs(tasks []model.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskDTO(&tasks[i]))
	}
	return out
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{ID: u.ID, UserName: u.UserName, Email: u.Email}
}
