package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/todo-api/internal/model"
)

// TaskRepo encapsulates all queries on todo_tasks.  Each method is a
// single statement; callers load, mutate and persist explicitly.
type TaskRepo struct {
	db *sqlx.DB
}

// NewTaskRepo constructs a TaskRepo with the provided DB handle.
func NewTaskRepo(db *sqlx.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// List returns every task ordered by id.
func (r *TaskRepo) List(ctx context.Context) ([]model.Task, error) {
	const q = `SELECT id, description, due_date, is_complete FROM todo_tasks ORDER BY id`
	tasks := []model.Task{}
	if err := r.db.SelectContext(ctx, &tasks, q); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	for i := range tasks {
		tasks[i].DueDate = utcPtr(tasks[i].DueDate)
	}
	return tasks, nil
}

// Find fetches a task by id.  It returns ErrTaskNotFound if no row is found.
func (r *TaskRepo) Find(ctx context.Context, id int64) (*model.Task, error) {
	const q = `SELECT id, description, due_date, is_complete FROM todo_tasks WHERE id = ?`
	var t model.Task
	if err := r.db.GetContext(ctx, &t, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}
	t.DueDate = utcPtr(t.DueDate)
	return &t, nil
}

// Add inserts a new task.  On success the task's ID field is populated with
// the auto-generated value.
func (r *TaskRepo) Add(ctx context.Context, t *model.Task) error {
	const q = `INSERT INTO todo_tasks (description, due_date, is_complete) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Description, utcPtr(t.DueDate), t.IsComplete)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading task id: %w", err)
	}
	t.ID = id
	return nil
}

// Save writes every mutable column of t back to its row.  It returns
// ErrTaskNotFound when the row no longer exists.
func (r *TaskRepo) Save(ctx context.Context, t *model.Task) error {
	const q = `UPDATE todo_tasks SET description = ?, due_date = ?, is_complete = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, t.Description, utcPtr(t.DueDate), t.IsComplete, t.ID)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Remove deletes a task by id.  It returns ErrTaskNotFound when no row is
// affected.
func (r *TaskRepo) Remove(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todo_tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Count returns the number of stored tasks.
func (r *TaskRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM todo_tasks`); err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return n, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
