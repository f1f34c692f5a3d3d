package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/eventhive/auth/internal/auth/domain"
	"github.com/eventhive/auth/internal/auth/mail"
	"github.com/eventhive/auth/internal/auth/store"
	"github.com/eventhive/auth/pkg/cryptox"
	"github.com/eventhive/auth/pkg/idx"
)

// OTPService owns the lifecycle of emailed one-time passcodes: issuance,
// delivery, verification, and terminal cleanup. Codes are stored only as
// SHA-256 fingerprints.
type OTPService struct {
	Store  store.Store
	Mailer mail.Sender

	// Now is the clock, overridable in tests. Nil means time.Now.
	Now func() time.Time
}

func (s *OTPService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// NormalizeEmail lowercases and trims an address. All challenge and user
// lookups key on this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Issue invalidates any prior challenge for the email, generates a fresh
// 6-digit code, persists the challenge, and emails the code. At most one
// live challenge per email exists afterwards. Returns when the new
// challenge expires.
func (s *OTPService) Issue(ctx context.Context, email, username string) (time.Time, error) {
	email = NormalizeEmail(email)

	// Supersede: stale challenges must never stay independently
	// verifiable after a resend.
	if err := s.Store.OTPChallenges().DeleteChallengesForEmail(ctx, email); err != nil {
		return time.Time{}, storeErr("supersede otp challenges", err)
	}

	code, err := generateCode()
	if err != nil {
		return time.Time{}, fmt.Errorf("generate otp code: %w", err)
	}

	now := s.now()
	ch := domain.OTPChallenge{
		ID:        idx.New().String(),
		Email:     email,
		Username:  username,
		CodeHash:  cryptox.Fingerprint(code),
		IssuedAt:  now,
		ExpiresAt: now.Add(domain.OTPLifetime),
	}
	if err := s.Store.OTPChallenges().CreateChallenge(ctx, ch); err != nil {
		return time.Time{}, storeErr("create otp challenge", err)
	}

	if err := s.Mailer.Send(ctx, email,
		"Verify your EventHive account",
		otpTextBody(username, code),
		otpHTMLBody(username, code),
	); err != nil {
		return time.Time{}, fmt.Errorf("deliver otp email: %w", err)
	}

	return ch.ExpiresAt, nil
}

// Verify consumes the latest active challenge for the email.
//
// Terminal failures (expired, attempts exhausted) purge every challenge for
// the email: the caller must start over with a fresh Issue. A wrong code
// increments the attempt counter atomically and reports the remaining
// tries. A correct code consumes the challenge exactly once even under
// concurrent submissions.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	ch, err := s.check(ctx, email, code)
	if err != nil {
		return err
	}
	return s.consume(ctx, s.Store, ch)
}

// check validates the code against the latest active challenge without
// consuming it. Failure accounting (attempt increments, terminal purges)
// commits here regardless of what the caller does with the challenge next.
func (s *OTPService) check(ctx context.Context, email, code string) (domain.OTPChallenge, error) {
	email = NormalizeEmail(email)

	ch, err := s.Store.OTPChallenges().GetLatestActiveChallenge(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OTPChallenge{}, ErrOTPNotFound
		}
		return domain.OTPChallenge{}, storeErr("load otp challenge", err)
	}

	if ch.Expired(s.now()) {
		if err := s.Store.OTPChallenges().DeleteChallengesForEmail(ctx, email); err != nil {
			return domain.OTPChallenge{}, storeErr("purge expired otp challenges", err)
		}
		return domain.OTPChallenge{}, ErrOTPExpired
	}

	if ch.Exhausted() {
		if err := s.Store.OTPChallenges().DeleteChallengesForEmail(ctx, email); err != nil {
			return domain.OTPChallenge{}, storeErr("purge exhausted otp challenges", err)
		}
		return domain.OTPChallenge{}, ErrOTPExhausted
	}

	if cryptox.Fingerprint(code) != ch.CodeHash {
		updated, err := s.Store.OTPChallenges().IncrementAttempts(ctx, ch.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Lost a race: the challenge was consumed or capped
				// between our read and the increment.
				return domain.OTPChallenge{}, ErrOTPNotFound
			}
			return domain.OTPChallenge{}, storeErr("record otp attempt", err)
		}
		return domain.OTPChallenge{}, &OTPMismatchError{Remaining: domain.MaxOTPAttempts - updated.AttemptsUsed}
	}

	return ch, nil
}

// consume spends a checked challenge against st, exactly once. st may be a
// transaction so registration can roll the spend back together with a
// failed account insert.
func (s *OTPService) consume(ctx context.Context, st store.Store, ch domain.OTPChallenge) error {
	if err := st.OTPChallenges().ConsumeChallenge(ctx, ch.ID, ch.CodeHash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOTPNotFound
		}
		return storeErr("consume otp challenge", err)
	}
	return nil
}

// generateCode draws a uniformly random code in [100000, 999999]. The range
// deliberately excludes leading zeros so codes read unambiguously in email.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

func otpTextBody(username, code string) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour EventHive verification code is: %s\n\n"+
			"The code expires in 5 minutes. If you did not request it, you can ignore this email.\n",
		username, code)
}

func otpHTMLBody(username, code string) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto">
  <h2>EventHive email verification</h2>
  <p>Hi %s,</p>
  <p>Use this code to verify your email address:</p>
  <div style="background:#f4f4f8;border-radius:8px;padding:16px;text-align:center">
    <span style="font-size:28px;letter-spacing:6px;font-weight:bold">%s</span>
  </div>
  <p>The code expires in 5 minutes.</p>
</div>`, username, code)
}
