package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pizza_service/internal/model"

	"github.com/jackc/pgx/v5"
)

var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	Update(ctx context.Context, id int, email, passwordHash string) error
	CountByRole(ctx context.Context, role string) (int, error)
}

type userRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user and its role assignments in one transaction.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	sql := `INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id`
	if err := tx.QueryRow(ctx, sql, user.Name, user.Email, user.PasswordHash).Scan(&user.ID); err != nil {
		rollback(ctx, tx)
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	for _, role := range user.Roles {
		_, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role, object_id) VALUES ($1, $2, $3)`,
			user.ID, role.Role, role.ObjectID)
		if err != nil {
			rollback(ctx, tx)
			return fmt.Errorf("failed to add role %s: %w", role.Role, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by email, nil when there is none.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT id, name, email, password_hash FROM users WHERE email = $1`
	err := r.db.QueryRow(ctx, sql, email).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user.Roles, err = r.roles(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT id, name, email, password_hash FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, sql, id).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	if user.Roles, err = r.roles(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) roles(ctx context.Context, userID int) ([]model.RoleAssignment, error) {
	rows, err := r.db.Query(ctx, `SELECT role, object_id FROM user_roles WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user roles: %w", err)
	}
	defer rows.Close()

	roles := []model.RoleAssignment{}
	for rows.Next() {
		var ra model.RoleAssignment
		if err := rows.Scan(&ra.Role, &ra.ObjectID); err != nil {
			return nil, fmt.Errorf("failed to scan role row: %w", err)
		}
		roles = append(roles, ra)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role rows: %w", err)
	}
	return roles, nil
}

// Update changes the non-empty credential fields. With nothing to change it is a no-op.
func (r *userRepository) Update(ctx context.Context, id int, email, passwordHash string) error {
	var sets []string
	var args []interface{}
	if email != "" {
		args = append(args, email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}
	if passwordHash != "" {
		args = append(args, passwordHash)
		sets = append(sets, fmt.Sprintf("password_hash = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	sql := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// CountByRole counts users holding role in any scope.
func (r *userRepository) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(DISTINCT user_id) FROM user_roles WHERE role = $1`, role).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count users by role: %w", err)
	}
	return n, nil
}
