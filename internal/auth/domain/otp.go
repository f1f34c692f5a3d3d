package domain

import "time"

// OTPChallenge is a single emailed one-time passcode. At most one unconsumed
// challenge per email is authoritative (the latest by issuance); issuing a
// new one removes its predecessors.
type OTPChallenge struct {
	ID           string
	Email        string // stored lowercase
	Username     string
	CodeHash     string // SHA-256 fingerprint of the 6-digit code
	AttemptsUsed int    // 0..MaxOTPAttempts
	Consumed     bool
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

const (
	// MaxOTPAttempts is the number of wrong codes tolerated before the
	// challenge becomes terminally exhausted.
	MaxOTPAttempts = 3

	// OTPLifetime is how long a challenge stays verifiable after issuance.
	OTPLifetime = 5 * time.Minute
)

// Expired reports whether the challenge has passed its expiry at the given
// instant.
func (c OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Exhausted reports whether the attempt cap has been reached.
func (c OTPChallenge) Exhausted() bool {
	return c.AttemptsUsed >= MaxOTPAttempts
}
