package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/garnizeh/joboffers/pkg/models"
)

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO users (username, password_hash, created) VALUES (?, ?, ?)`, u.Username, u.PasswordHash, toMicros(now()))
	if err != nil {
		return 0, mapConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	r.logger.Debug("user created", slog.Int64("user_id", id))
	return id, nil
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, username, password_hash, created FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, username, password_hash, created FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// DeleteUser removes the account; its offers go with it through ON DELETE CASCADE.
func (r *SQLiteRepo) DeleteUser(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &u, nil
}
