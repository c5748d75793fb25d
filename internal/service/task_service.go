package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/todo-api/internal/model"
	"github.com/iliyamo/todo-api/internal/queue"
	"github.com/iliyamo/todo-api/internal/repository"
)

// TaskStore is the persistence surface the task service needs.
type TaskStore interface {
	List(ctx context.Context) ([]model.Task, error)
	Find(ctx context.Context, id int64) (*model.Task, error)
	Add(ctx context.Context, t *model.Task) error
	Save(ctx context.Context, t *model.Task) error
	Remove(ctx context.Context, id int64) error
}

// TaskService implements the task use cases on top of a TaskStore.  Every
// successful write is announced through the publisher; publish failures are
// logged and never fail the request.
type TaskService struct {
	store TaskStore
	pub   queue.Publisher
}

// NewTaskService wires a TaskService.  A nil publisher disables events.
func NewTaskService(store TaskStore, pub queue.Publisher) *TaskService {
	if pub == nil {
		pub = queue.NopPublisher{}
	}
	return &TaskService{store: store, pub: pub}
}

// Create stores a new open task.  Input is expected to be validated by the
// caller.
func (s *TaskService) Create(ctx context.Context, description string, dueDate *time.Time) (TaskDTO, error) {
	t := &model.Task{Description: description, DueDate: dueDate}
	if err := s.store.Add(ctx, t); err != nil {
		return TaskDTO{}, err
	}
	s.publish(ctx, queue.TaskCreated, t)
	return toTaskDTO(t), nil
}

// GetAll returns every task in store order.
func (s *TaskService) GetAll(ctx context.Context) ([]TaskDTO, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return toTaskDTOs(tasks), nil
}

// GetByID returns the task with the given id.  found is false when no such
// task exists; err is reserved for store failures.
func (s *TaskService) GetByID(ctx context.Context, id int64) (TaskDTO, bool, error) {
	t, err := s.store.Find(ctx, id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return TaskDTO{}, false, nil
	}
	if err != nil {
		return TaskDTO{}, false, err
	}
	return toTaskDTO(t), true, nil
}

// Update sets the completion flag of an existing task.  Description and
// due date never change after creation.
func (s *TaskService) Update(ctx context.Context, id int64, isComplete bool) (TaskDTO, error) {
	t, err := s.store.Find(ctx, id)
	if err != nil {
		return TaskDTO{}, notFoundOr(err, id)
	}
	t.IsComplete = isComplete
	if err := s.store.Save(ctx, t); err != nil {
		return TaskDTO{}, notFoundOr(err, id)
	}
	s.publish(ctx, queue.TaskUpdated, t)
	return toTaskDTO(t), nil
}

// Delete removes an existing task.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	t, err := s.store.Find(ctx, id)
	if err != nil {
		return notFoundOr(err, id)
	}
	if err := s.store.Remove(ctx, id); err != nil {
		return notFoundOr(err, id)
	}
	s.publish(ctx, queue.TaskDeleted, t)
	return nil
}

func notFoundOr(err error, id int64) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return &NotFoundError{Entity: "Task", Key: id}
	}
	return err
}

func (s *TaskService) publish(ctx context.Context, typ string, t *model.Task) {
	ev := queue.NewTaskEvent(typ, t.ID, t.Description, t.DueDate, t.IsComplete)
	if err := s.pub.PublishTaskEvent(ctx, ev); err != nil {
		log.Printf("task events: %s for task %d not published: %v", typ, t.ID, err)
	}
}
