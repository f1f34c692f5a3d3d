package store

import (
	"context"
	"errors"
	"time"

	"github.com/eventhive/auth/internal/auth/domain"
	"github.com/eventhive/auth/internal/auth/keystroke"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrUnavailable wraps infrastructure failures (store unreachable,
	// I/O errors). Callers must surface it distinctly and never fold it
	// into a credential failure.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement it. All mutation of persisted auth state goes through these
// narrow repositories; nothing else writes to the records directly.
type Store interface {
	Users() Users
	OTPChallenges() OTPChallenges

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil error
	// and rolling back otherwise. Preferred over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store with Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername looks up by the unique username.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail looks up by the unique normalized (lowercase) email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when username or email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateLastLogin bumps last_login_at and updated_at.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// UpdateEnrolledPattern replaces the stored keystroke pattern.
	// A nil pattern clears the enrollment.
	UpdateEnrolledPattern(ctx context.Context, userID string, p *keystroke.Pattern) error
}

type OTPChallenges interface {
	// CreateChallenge inserts a freshly issued challenge.
	CreateChallenge(ctx context.Context, ch domain.OTPChallenge) error

	// GetLatestActiveChallenge returns the most recently issued unconsumed
	// challenge for an email, or ErrNotFound.
	GetLatestActiveChallenge(ctx context.Context, email string) (domain.OTPChallenge, error)

	// IncrementAttempts bumps attempts_used by one, but only while the
	// challenge is unconsumed and under the attempt cap. The increment is
	// a single conditional statement so concurrent verifies cannot
	// overshoot the cap. Returns the post-increment challenge, or
	// ErrNotFound when the condition no longer holds.
	IncrementAttempts(ctx context.Context, id string) (domain.OTPChallenge, error)

	// ConsumeChallenge marks the challenge consumed, but only if it is
	// still unconsumed, under the attempt cap, and the code fingerprint
	// matches. Exactly one concurrent caller can win; losers get
	// ErrNotFound.
	ConsumeChallenge(ctx context.Context, id string, codeHash string) error

	// DeleteChallengesForEmail removes every challenge for an email.
	// Used both when superseding on issue and when a challenge reaches a
	// terminal failure state.
	DeleteChallengesForEmail(ctx context.Context, email string) error

	// DeleteExpiredChallenges removes every challenge that expired before
	// the cutoff and reports how many were removed (housekeeping).
	DeleteExpiredChallenges(ctx context.Context, before time.Time) (int64, error)
}
