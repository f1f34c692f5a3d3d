package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/eventhive/auth/internal/auth/domain"
	"github.com/eventhive/auth/internal/auth/store"
)

type otpChallengesRepo struct {
	q querier
}

const otpColumns = `id, email, username, code_hash, attempts_used, consumed, issued_at, expires_at`

func (r *otpChallengesRepo) CreateChallenge(ctx context.Context, ch domain.OTPChallenge) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO otp_challenges (id, email, username, code_hash,
			attempts_used, consumed, issued_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.ID, ch.Email, ch.Username, ch.CodeHash,
		ch.AttemptsUsed, boolToInt(ch.Consumed), ch.IssuedAt.UTC(), ch.ExpiresAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *otpChallengesRepo) GetLatestActiveChallenge(ctx context.Context, email string) (domain.OTPChallenge, error) {
	// Only the newest unconsumed challenge is authoritative; stale ones
	// left behind by a resend race are never independently verifiable.
	row := r.q.QueryRowContext(ctx, `
		SELECT `+otpColumns+` FROM otp_challenges
		WHERE email = ? AND consumed = 0
		ORDER BY issued_at DESC, id DESC
		LIMIT 1`, email)
	return scanChallenge(row)
}

func (r *otpChallengesRepo) IncrementAttempts(ctx context.Context, id string) (domain.OTPChallenge, error) {
	// Single conditional UPDATE ... RETURNING: the read-modify-write is
	// atomic, so two concurrent wrong submissions cannot both observe
	// attempts_used=2 and push past the cap.
	row := r.q.QueryRowContext(ctx, `
		UPDATE otp_challenges
		SET attempts_used = attempts_used + 1
		WHERE id = ? AND consumed = 0 AND attempts_used < ?
		RETURNING `+otpColumns,
		id, domain.MaxOTPAttempts)
	return scanChallenge(row)
}

func (r *otpChallengesRepo) ConsumeChallenge(ctx context.Context, id string, codeHash string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE otp_challenges
		SET consumed = 1
		WHERE id = ? AND code_hash = ? AND consumed = 0 AND attempts_used < ?`,
		id, codeHash, domain.MaxOTPAttempts)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *otpChallengesRepo) DeleteChallengesForEmail(ctx context.Context, email string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM otp_challenges WHERE email = ?`, email)
	return err
}

func (r *otpChallengesRepo) DeleteExpiredChallenges(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM otp_challenges WHERE expires_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanChallenge(row *sql.Row) (domain.OTPChallenge, error) {
	var (
		ch       domain.OTPChallenge
		consumed int64
	)

	err := row.Scan(&ch.ID, &ch.Email, &ch.Username, &ch.CodeHash,
		&ch.AttemptsUsed, &consumed, &ch.IssuedAt, &ch.ExpiresAt)
	if err != nil {
		return domain.OTPChallenge{}, mapNotFound(err)
	}

	ch.Consumed = consumed != 0
	return ch, nil
}
