package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/eventhive/auth/internal/auth/keystroke"
	"github.com/eventhive/auth/internal/auth/store"
	"github.com/eventhive/auth/internal/auth/store/drivers/sqlite"
	"github.com/eventhive/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *captureSender) {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	mailer := &captureSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &AuthService{
		Store:    s,
		Users:    &UserService{Store: s},
		OTP:      &OTPService{Store: s, Mailer: mailer},
		Sessions: &SessionService{Signer: jwtx.NewSigner("test-secret", "eventhive-auth", time.Hour)},
		Logger:   logger,
	}, mailer
}

func enrolledFingerprint() *keystroke.Pattern {
	return keystroke.NewFingerprintPattern(keystroke.Fingerprint{
		Sequence:              []string{"s", "e", "c", "r", "e", "t"},
		Intervals:             []int64{100, 110, 90, 105, 95},
		DwellTimes:            []int64{70, 75, 68, 72, 74, 71},
		DurationMillis:        570,
		AverageIntervalMillis: 100,
	})
}

func TestRegistrationFlow(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newAuthService(t)

	req := RegistrationRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
		Enrolled: enrolledFingerprint(),
	}

	expiresAt, err := svc.StartRegistration(ctx, req.Username, req.Email)
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	sess, err := svc.ConfirmRegistration(ctx, req, mailer.lastCode(t))
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.Equal(t, "alice", sess.Username)

	claims, err := svc.Sessions.Verify(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, sess.UserID, claims.UserID())
	require.Equal(t, "alice", claims.Username)

	// The account now exists and the password works.
	_, err = svc.Login(ctx, "alice", "hunter22", enrolledFingerprint())
	require.NoError(t, err)
}

func TestStartRegistrationValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	cases := []struct {
		name            string
		username, email string
	}{
		{"bad email", "alice", "not-an-email"},
		{"email missing domain dot", "alice", "a@b"},
		{"short username", "al", "a@b.com"},
		{"whitespace username", "  a ", "a@b.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.StartRegistration(ctx, tc.username, tc.email)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	// Password strength is only enforced at confirmation time, since the
	// first step never carries a password.
	_, err := svc.ConfirmRegistration(ctx, RegistrationRequest{
		Username: "alice", Email: "a@b.com", Password: "abc",
	}, "123456")
	require.ErrorIs(t, err, ErrValidation)
}

func TestStartRegistrationConflicts(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newAuthService(t)

	req := RegistrationRequest{Username: "alice", Email: "alice@example.com", Password: "hunter22"}
	_, err := svc.StartRegistration(ctx, req.Username, req.Email)
	require.NoError(t, err)
	_, err = svc.ConfirmRegistration(ctx, req, mailer.lastCode(t))
	require.NoError(t, err)

	_, err = svc.StartRegistration(ctx, "alice", "fresh@example.com")
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.StartRegistration(ctx, "someoneelse", "ALICE@example.com")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestConfirmRegistrationWrongCode(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newAuthService(t)

	req := RegistrationRequest{Username: "bob", Email: "bob@example.com", Password: "hunter22"}
	_, err := svc.StartRegistration(ctx, req.Username, req.Email)
	require.NoError(t, err)

	wrong := "000000"
	if mailer.lastCode(t) == wrong {
		wrong = "000001"
	}

	var mismatch *OTPMismatchError
	_, err = svc.ConfirmRegistration(ctx, req, wrong)
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, 2, mismatch.Remaining)

	// No account was created on the failed confirmation.
	_, err = svc.Login(ctx, "bob", "hunter22", nil)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// The right code still completes the flow.
	_, err = svc.ConfirmRegistration(ctx, req, mailer.lastCode(t))
	require.NoError(t, err)
}

func TestConfirmRegistrationConflictKeepsChallenge(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newAuthService(t)

	req := RegistrationRequest{Username: "frank", Email: "frank@example.com", Password: "hunter22"}
	_, err := svc.StartRegistration(ctx, req.Username, req.Email)
	require.NoError(t, err)
	code := mailer.lastCode(t)

	// Someone grabs the username between the two steps.
	_, err = svc.Users.Register(ctx, "frank", "other@example.com", "hunter22", nil)
	require.NoError(t, err)

	_, err = svc.ConfirmRegistration(ctx, req, code)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// The conflict rolled the consumption back, so the same code still
	// works once the collision is resolved.
	req.Username = "franklin"
	sess, err := svc.ConfirmRegistration(ctx, req, code)
	require.NoError(t, err)
	require.Equal(t, "franklin", sess.Username)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newAuthService(t)

	req := RegistrationRequest{Username: "carol", Email: "carol@example.com", Password: "hunter22"}
	_, err := svc.StartRegistration(ctx, req.Username, req.Email)
	require.NoError(t, err)
	_, err = svc.ConfirmRegistration(ctx, req, mailer.lastCode(t))
	require.NoError(t, err)

	_, err = svc.Login(ctx, "carol", "wrong-password", nil)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "no-such-user", "hunter22", nil)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginKeystrokeSecondFactor(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newAuthService(t)

	req := RegistrationRequest{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "hunter22",
		Enrolled: enrolledFingerprint(),
	}
	_, err := svc.StartRegistration(ctx, req.Username, req.Email)
	require.NoError(t, err)
	_, err = svc.ConfirmRegistration(ctx, req, mailer.lastCode(t))
	require.NoError(t, err)

	t.Run("matching rhythm passes", func(t *testing.T) {
		captured := enrolledFingerprint()
		captured.Fingerprint.AverageIntervalMillis = 120
		captured.Fingerprint.DurationMillis = 640

		_, err := svc.Login(ctx, "dave", "hunter22", captured)
		require.NoError(t, err)
	})

	t.Run("different keys rejected", func(t *testing.T) {
		captured := enrolledFingerprint()
		captured.Fingerprint.Sequence[2] = "x"

		_, err := svc.Login(ctx, "dave", "hunter22", captured)
		require.ErrorIs(t, err, ErrBiometricMismatch)
	})

	t.Run("wildly different rhythm rejected", func(t *testing.T) {
		captured := enrolledFingerprint()
		captured.Fingerprint.AverageIntervalMillis = 400

		_, err := svc.Login(ctx, "dave", "hunter22", captured)
		require.ErrorIs(t, err, ErrBiometricMismatch)
	})

	t.Run("missing capture is advisory", func(t *testing.T) {
		// A client that could not record events still logs in on the
		// password alone.
		_, err := svc.Login(ctx, "dave", "hunter22", nil)
		require.NoError(t, err)
	})

	t.Run("no enrollment skips the check", func(t *testing.T) {
		plain := RegistrationRequest{Username: "erin", Email: "erin@example.com", Password: "hunter22"}
		_, err := svc.StartRegistration(ctx, plain.Username, plain.Email)
		require.NoError(t, err)
		_, err = svc.ConfirmRegistration(ctx, plain, mailer.lastCode(t))
		require.NoError(t, err)

		_, err = svc.Login(ctx, "erin", "hunter22", enrolledFingerprint())
		require.NoError(t, err)
	})
}

func TestHousekeepingPurgesExpired(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	svc.OTP.Now = func() time.Time { return time.Now().UTC().Add(-10 * time.Minute) }
	_, err := svc.OTP.Issue(ctx, "stale@example.com", "stale")
	require.NoError(t, err)
	svc.OTP.Now = nil

	hk := &Housekeeping{
		Store:    svc.OTP.Store,
		Logger:   svc.Logger,
		Interval: time.Hour,
	}
	hk.Start(context.Background())
	t.Cleanup(hk.Stop)

	// The startup sweep runs asynchronously.
	require.Eventually(t, func() bool {
		_, err := svc.OTP.Store.OTPChallenges().GetLatestActiveChallenge(ctx, "stale@example.com")
		return errors.Is(err, store.ErrNotFound)
	}, 2*time.Second, 10*time.Millisecond)
}
