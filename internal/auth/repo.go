package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"streamhub/pkg/models"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ErrEmailTaken = errors.New("email already exists")

type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         string
	TokenVersion int
	CreatedAt    time.Time
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// CreateUser inserts the user and its first profile in one transaction.
func (r *Repo) CreateUser(ctx context.Context, u User, first models.Profile) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if u.Role == "" {
		u.Role = RoleUser
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, full_name, email, password_hash, role)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.FullName, u.Email, u.PasswordHash, u.Role); err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (id, user_id, name, avatar_color, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, first.ID, u.ID, first.Name, first.AvatarColor, first.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("create default profile: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}
	return nil
}

const userColumns = `id, full_name, email, password_hash, role, token_version, created_at`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.TokenVersion, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get by email: %w", err)
	}
	return u, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return u, nil
}

// GetTokenVersion returns -1 for an unknown user so no token matches it.
func (r *Repo) GetTokenVersion(ctx context.Context, id string) (int, error) {
	var version int
	err := r.DB.QueryRowContext(ctx, `SELECT token_version FROM users WHERE id = ?`, id).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return -1, nil
		}
		return 0, fmt.Errorf("get token version: %w", err)
	}
	return version, nil
}

func (r *Repo) SetRole(ctx context.Context, id, role string) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}

func (r *Repo) UpdatePasswordAndBumpTokenVersion(ctx context.Context, id string, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, token_version = token_version + 1
		WHERE id = ?
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update password: user not found")
	}
	return nil
}

func (r *Repo) BumpTokenVersion(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET token_version = token_version + 1
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump token version rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bump token version: user not found")
	}
	return nil
}
