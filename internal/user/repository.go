package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Store is the persistence interface the service depends on. *Repository is
// the production implementation; tests substitute an in-memory fake.
type Store interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, u *User) (*User, error)
	SaveTokens(ctx context.Context, id int64, tokens []string) error
	SaveAvatar(ctx context.Context, id int64, avatar []byte) error
	Delete(ctx context.Context, id int64) (*User, error)
}

const userColumns = "id, name, email, password, age, avatar, tokens, created_at"

// Repository handles user data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new user repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Password,
		&u.Age,
		&u.Avatar,
		pq.Array(&u.Tokens),
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (name, email, password, age)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query,
		u.Name, u.Email, u.Password, u.Age))
	if err != nil {
		// The existence check in the service and this insert are not atomic;
		// the unique index catches the race.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrEmailAlreadyInUse
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// GetByID retrieves a user by their ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by their email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// List retrieves every user record, oldest first.
func (r *Repository) List(ctx context.Context) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.Password,
			&u.Age,
			&u.Avatar,
			pq.Array(&u.Tokens),
			&u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Update writes the mutable profile fields back to the row.
func (r *Repository) Update(ctx context.Context, u *User) (*User, error) {
	query := `
		UPDATE users
		SET name = $2, email = $3, password = $4, age = $5
		WHERE id = $1
		RETURNING ` + userColumns

	updated, err := scanUser(r.db.QueryRowContext(ctx, query,
		u.ID, u.Name, u.Email, u.Password, u.Age))
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return updated, nil
}

// SaveTokens replaces the user's session token collection.
func (r *Repository) SaveTokens(ctx context.Context, id int64, tokens []string) error {
	query := `UPDATE users SET tokens = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, pq.Array(tokens)); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	return nil
}

// SaveAvatar stores the processed avatar bytes; a nil avatar clears the field.
func (r *Repository) SaveAvatar(ctx context.Context, id int64, avatar []byte) error {
	query := `UPDATE users SET avatar = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, avatar); err != nil {
		return fmt.Errorf("failed to save avatar: %w", err)
	}
	return nil
}

// Delete removes a user and returns the deleted record, avatar included.
func (r *Repository) Delete(ctx context.Context, id int64) (*User, error) {
	query := `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns

	deleted, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return deleted, nil
}
