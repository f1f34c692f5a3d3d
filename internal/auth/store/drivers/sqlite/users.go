package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eventhive/auth/internal/auth/domain"
	"github.com/eventhive/auth/internal/auth/keystroke"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, username, email, password_hash, role, enrolled_pattern,
	email_verified, last_login_at, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	pattern, err := marshalPattern(u.EnrolledPattern)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, role,
			enrolled_pattern, email_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role,
		pattern, boolToInt(u.EmailVerified), now, now,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) UpdateEnrolledPattern(ctx context.Context, userID string, p *keystroke.Pattern) error {
	pattern, err := marshalPattern(p)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		UPDATE users SET enrolled_pattern = ?, updated_at = ? WHERE id = ?`,
		pattern, time.Now().UTC(), userID,
	)
	return err
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u             domain.User
		pattern       sql.NullString
		emailVerified int64
		lastLogin     sql.NullTime
	)

	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&pattern, &emailVerified, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.EmailVerified = emailVerified != 0
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	if pattern.Valid && pattern.String != "" {
		var p keystroke.Pattern
		if err := json.Unmarshal([]byte(pattern.String), &p); err != nil {
			return domain.User{}, fmt.Errorf("decode enrolled pattern: %w", err)
		}
		u.EnrolledPattern = &p
	}

	return u, nil
}

// marshalPattern serializes a pattern to its JSON column value; nil maps to
// SQL NULL.
func marshalPattern(p *keystroke.Pattern) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode enrolled pattern: %w", err)
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
