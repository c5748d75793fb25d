// Package queue defines task lifecycle events and moves them over RabbitMQ.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// TaskEventsQueue is the durable queue task events are published to.
const TaskEventsQueue = "todo.task.events"

// Event types.
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

// TaskEvent is published after a task write has been persisted.  It carries
// enough of the task for consumers to log or notify without querying the
// database.
type TaskEvent struct {
	EventID     string     `json:"event_id"`
	Type        string     `json:"type"`
	TaskID      int64      `json:"task_id"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	IsComplete  bool       `json:"is_complete"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// NewTaskEvent stamps an event with a fresh id and the current UTC time.
func NewTaskEvent(typ string, taskID int64, description string, dueDate *time.Time, isComplete bool) TaskEvent {
	return TaskEvent{
		EventID:     uuid.NewString(),
		Type:        typ,
		TaskID:      taskID,
		Description: description,
		DueDate:     dueDate,
		IsComplete:  isComplete,
		OccurredAt:  time.Now().UTC(),
	}
}
