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

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts u and fills in its ID and CreatedAt.  A clash on the
// normalized username yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.db.NamedExecContext(ctx,
		`INSERT INTO users (user_name, normalized_user_name, email, password_hash, created_at)
		 VALUES (:user_name, :normalized_user_name, :email, :password_hash, :created_at)`, u)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("creating user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading user id: %w", err)
	}
	u.ID = id
	return nil
}

// GetByUserName fetches a user by normalized username.
func (r *UserRepo) GetByUserName(ctx context.Context, normalized string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u,
		`SELECT id, user_name, normalized_user_name, email, password_hash, created_at
		 FROM users WHERE normalized_user_name = ? LIMIT 1`, normalized)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user %s: %w", normalized, err)
	}
	return &u, nil
}
