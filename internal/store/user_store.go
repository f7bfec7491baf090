package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/statutecheck/statutecheck/internal/auth"
	"github.com/statutecheck/statutecheck/internal/model"
)

// UserStore handles database operations for users and roles
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// GetByUsername retrieves a user by username with the role name joined
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.role_id, r.name, u.updated_by, u.updated_dt
		FROM users u
		JOIN roles r ON u.role_id = r.id
		WHERE u.username = $1
	`

	var u model.User
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID, &u.RoleName, &u.UpdatedBy, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}

	return &u, nil
}

// LoadActor resolves a user id to an Actor with the role's parsed
// permission matrix. Returns nil when the user no longer exists.
func (s *UserStore) LoadActor(ctx context.Context, userID int) (*auth.Actor, error) {
	query := `
		SELECT u.id, u.username, r.name, r.permissions
		FROM users u
		JOIN roles r ON u.role_id = r.id
		WHERE u.id = $1
	`

	var (
		actor    auth.Actor
		rawPerms string
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&actor.ID, &actor.Username, &actor.Role, &rawPerms)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load actor %d: %w", userID, err)
	}

	perms, err := auth.ParsePermissions(rawPerms)
	if err != nil {
		return nil, fmt.Errorf("failed to parse permissions for user %d: %w", userID, err)
	}
	actor.Permissions = perms

	return &actor, nil
}

// GetAll retrieves all users with their role names
func (s *UserStore) GetAll(ctx context.Context) ([]model.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.role_id, r.name, u.updated_by, u.updated_dt
		FROM users u
		JOIN roles r ON u.role_id = r.id
		ORDER BY u.username
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID, &u.RoleName, &u.UpdatedBy, &u.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Create inserts a new user
func (s *UserStore) Create(ctx context.Context, u *model.User, updatedBy string) error {
	query := `
		INSERT INTO users (username, email, password_hash, role_id, updated_by, updated_dt)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.RoleID, updatedBy, time.Now(),
	).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", u.Username, err)
	}
	return nil
}

// Delete removes a user
func (s *UserStore) Delete(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}

// SetPassword replaces a user's password hash. Returns false when the
// username does not exist.
func (s *UserStore) SetPassword(ctx context.Context, username, passwordHash, updatedBy string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $1, updated_by = $2, updated_dt = $3 WHERE username = $4
	`, passwordHash, updatedBy, time.Now(), username)
	if err != nil {
		return false, fmt.Errorf("failed to set password for %s: %w", username, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetRoles retrieves all roles
func (s *UserStore) GetRoles(ctx context.Context) ([]model.Role, error) {
	query := `SELECT id, name, permissions FROM roles ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var r model.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Permissions); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, r)
	}

	return roles, rows.Err()
}

// UpdateRolePermissions replaces a role's permission matrix
func (s *UserStore) UpdateRolePermissions(ctx context.Context, roleID int, permissions, updatedBy string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE roles SET permissions = $1, updated_by = $2, updated_dt = $3 WHERE id = $4
	`, permissions, updatedBy, time.Now(), roleID)
	if err != nil {
		return fmt.Errorf("failed to update role %d: %w", roleID, err)
	}
	return nil
}
