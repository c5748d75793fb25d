package model

import "time"

// MaxDescriptionLength is the column width of todo_tasks.description.
const MaxDescriptionLength = 750

// Task represents a to-do item as stored in the `todo_tasks` table.
// The id is assigned by the database on insert and never changes.
//
// Fields:
//  ID          – primary key identifier.
//  Description – what needs doing, at most MaxDescriptionLength characters.
//  DueDate     – optional due date (nullable).
//  IsComplete  – completion flag, false on creation.
type Task struct {
	ID          int64      `db:"id"`
	Description string     `db:"description"`
	DueDate     *time.Time `db:"due_date"`
	IsComplete  bool       `db:"is_complete"`
}
