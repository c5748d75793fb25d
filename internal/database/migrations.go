package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS todo_tasks (
		id          BIGINT AUTO_INCREMENT PRIMARY KEY,
		description VARCHAR(750) NOT NULL,
		due_date    DATETIME NULL,
		is_complete BOOLEAN NOT NULL DEFAULT FALSE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS users (
		id                   BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_name            VARCHAR(256) NOT NULL,
		normalized_user_name VARCHAR(256) NOT NULL,
		email                VARCHAR(256) NOT NULL,
		password_hash        VARCHAR(255) NOT NULL,
		created_at           DATETIME NOT NULL,
		UNIQUE KEY ux_users_normalized_user_name (normalized_user_name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS todo_tasks (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL CHECK (length(description) <= 750),
		due_date    DATETIME NULL,
		is_complete BOOLEAN NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		user_name            TEXT NOT NULL,
		normalized_user_name TEXT NOT NULL UNIQUE,
		email                TEXT NOT NULL,
		password_hash        TEXT NOT NULL,
		created_at           DATETIME NOT NULL
	)`,
}

// Migrate creates the todo_tasks and users tables when they do not exist.
// It is safe to run on every startup.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := mysqlSchema
	if db.DriverName() == "sqlite" {
		schema = sqliteSchema
	}
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
