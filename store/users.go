package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/satheeshds/invoicer/auth"
	"github.com/satheeshds/invoicer/models"
)

const userSelectQuery = `SELECT id, name, username, password_hash, role, is_admin, deleted, created_at FROM users`

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.PasswordHash, &u.Role, &u.IsAdmin, &u.Deleted, &u.CreatedAt)
	return u, err
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, userSelectQuery+" WHERE deleted = false ORDER BY id")
	if err != nil {
		return nil, &QueryError{Op: "list users", Err: err}
	}
	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, &QueryError{Op: "list users", Err: err}
	}
	return users, nil
}

func (s *Store) getUser(ctx context.Context, op, cond string, arg any) (models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, userSelectQuery+" WHERE deleted = false AND "+cond+" = $1", arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return u, ErrNotFound
	}
	if err != nil {
		return u, &QueryError{Op: op, Err: err}
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	return s.getUser(ctx, "get user", "id", id)
}

// GetUserByUsername returns the live account with the given login name, password hash included.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.getUser(ctx, "get user by username", "username", username)
}

// CreateUser hashes the password and inserts the account.
func (s *Store) CreateUser(ctx context.Context, in models.UserInput) (models.User, error) {
	if msg := in.Validate(); msg != "" {
		return models.User{}, invalid("", msg)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, &WriteError{Op: "hash password", Err: err}
	}
	u, err := scanUser(s.pool.QueryRow(ctx, `INSERT INTO users (name, username, password_hash, role, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, username, password_hash, role, is_admin, deleted, created_at`,
		in.Name, in.Username, hash, in.Role, in.IsAdmin))
	if err != nil {
		return models.User{}, &WriteError{Op: "insert user", Err: err}
	}
	return u, nil
}

// PatchUser updates the allow-listed columns present in fields. A "password" key is stored
// as a fresh bcrypt hash.
func (s *Store) PatchUser(ctx context.Context, id int64, fields map[string]any) (models.User, error) {
	query, args, err := buildUpdate("users", userPatchColumns, fields, id)
	if err != nil {
		return models.User{}, err
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return models.User{}, &WriteError{Op: "update user", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return models.User{}, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.softDelete(ctx, "users", id)
}
