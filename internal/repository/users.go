package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aDolgosheev/bank-card-management/internal/models"
	"github.com/lib/pq"
)

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, first_name, last_name, password_hash, roles)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}
	err := r.q.QueryRowContext(ctx, query, user.Email, user.FirstName, user.LastName, user.PasswordHash, pq.Array(roles)).
		Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by id
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, email, first_name, last_name, password_hash, roles
		FROM users
		WHERE id = $1`
	return r.scanUser(r.q.QueryRowContext(ctx, query, id), fmt.Sprintf("user with id %d", id))
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, first_name, last_name, password_hash, roles
		FROM users
		WHERE email = $1`
	return r.scanUser(r.q.QueryRowContext(ctx, query, email), fmt.Sprintf("user with email %s", email))
}

// ListUsers retrieves users ordered by id
func (r *Repository) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	query := `
		SELECT id, email, first_name, last_name, password_hash, roles
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2`
	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user := models.User{}
		var roles []string
		if err := rows.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.PasswordHash, pq.Array(&roles)); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Roles = toRoles(roles)
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteUser removes a user by id
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user with id %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *Repository) scanUser(row *sql.Row, what string) (*models.User, error) {
	user := &models.User{}
	var roles []string
	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.PasswordHash, pq.Array(&roles))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", what, err)
	}
	user.Roles = toRoles(roles)
	return user, nil
}

func toRoles(raw []string) []models.Role {
	roles := make([]models.Role, 0, len(raw))
	for _, r := range raw {
		roles = append(roles, models.Role(r))
	}
	return roles
}
