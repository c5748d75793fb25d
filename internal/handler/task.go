package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/service"
	"github.com/iliyamo/todo-api/internal/validator"
)

// TaskService is the task use-case surface the handler depends on.
type TaskService interface {
	GetAll(ctx context.Context) ([]service.TaskDTO, error)
	GetByID(ctx context.Context, id int64) (service.TaskDTO, bool, error)
	Create(ctx context.Context, description string, dueDate *time.Time) (service.TaskDTO, error)
	Update(ctx context.Context, id int64, isComplete bool) (service.TaskDTO, error)
	Delete(ctx context.Context, id int64) error
}

// TaskHandler serves /api/todotasks.
type TaskHandler struct {
	Tasks     TaskService
	Validator validator.TaskValidator
}

func NewTaskHandler(tasks TaskService, v validator.TaskValidator) *TaskHandler {
	if tasks == nil {
		panic("nil task service passed to NewTaskHandler")
	}
	return &TaskHandler{Tasks: tasks, Validator: v}
}

type createTaskReq struct {
	Description string  `json:"description"`
	DueDate     *string `json:"dueDate"`
}

type updateTaskReq struct {
	ID         int64 `json:"id"`
	IsComplete bool  `json:"isComplete"`
}

// accepted dueDate layouts, most specific first
var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseDueDate accepts an RFC 3339 timestamp, a zone-less timestamp or a
// bare date.  Zone-less values are read as UTC.
func parseDueDate(s *string) (*time.Time, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, true
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(*s)); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}

// List handles GET /api/todotasks.
func (h *TaskHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	tasks, err := h.Tasks.GetAll(ctx)
	if err != nil {
		c.Logger().Errorf("list tasks: %v", err)
		return badRequest(c, "could not list tasks")
	}
	return c.JSON(http.StatusOK, tasks)
}

// Get handles GET /api/todotasks/:id.
func (h *TaskHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	task, found, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		c.Logger().Errorf("get task %d: %v", id, err)
		return badRequest(c, "could not load task")
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
	}
	return c.JSON(http.StatusOK, task)
}

// Create handles POST /api/todotasks.
func (h *TaskHandler) Create(c echo.Context) error {
	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	due, ok := parseDueDate(req.DueDate)
	if !ok {
		errs := validator.Errors{}
		errs.Add("dueDate", "'dueDate' is not a valid date.")
		return validationFailed(c, errs)
	}
	if errs := h.Validator.ValidateCreate(req.Description, due); !errs.Valid() {
		return validationFailed(c, errs)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	task, err := h.Tasks.Create(ctx, req.Description, due)
	if err != nil {
		c.Logger().Errorf("create task: %v", err)
		return badRequest(c, "could not create task")
	}
	return c.JSON(http.StatusOK, task)
}

// Update handles PUT /api/todotasks/:id.  The body id must match the route
// id; only the completion flag is applied.
func (h *TaskHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req updateTaskReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.ID != id {
		errs := validator.Errors{}
		errs.Add("id", "'id' must match the id in the route.")
		return validationFailed(c, errs)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	task, err := h.Tasks.Update(ctx, id, req.IsComplete)
	if err != nil {
		var nf *service.NotFoundError
		if errors.As(err, &nf) {
			c.Logger().Warnf("update task %d: %v", id, err)
			return c.NoContent(http.StatusNotFound)
		}
		c.Logger().Errorf("update task %d: %v", id, err)
		return c.NoContent(http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /api/todotasks/:id.
func (h *TaskHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Tasks.Delete(ctx, id); err != nil {
		var nf *service.NotFoundError
		if errors.As(err, &nf) {
			c.Logger().Warnf("delete task %d: %v", id, err)
			return c.NoContent(http.StatusNotFound)
		}
		c.Logger().Errorf("delete task %d: %v", id, err)
		return c.NoContent(http.StatusBadRequest)
	}
	return c.NoContent(http.StatusNoContent)
}
