package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/eventhive/auth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestLoginAndSession verifies password login and the session endpoints.
func TestLoginAndSession(t *testing.T) {
	baseURL, container, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)
	ctx := context.Background()

	created := registerUser(t, client, container, "dave", "dave@example.com")

	// Login works with the username and with the email, any casing.
	for _, identifier := range []string{"dave", "dave@example.com", "DAVE@EXAMPLE.COM"} {
		login, err := client.Login(ctx, authsdk.LoginRequest{
			Identifier: identifier,
			Password:   testPassword,
		})
		require.NoError(t, err, "identifier %q", identifier)
		require.True(t, login.SessionEstablished)
		require.Equal(t, created.UserID, login.UserID)
		require.NotEmpty(t, login.AccessToken)
	}

	login, err := client.Login(ctx, authsdk.LoginRequest{
		Identifier: "dave",
		Password:   testPassword,
	})
	require.NoError(t, err)

	me, err := client.Me(ctx, login.AccessToken)
	require.NoError(t, err)
	require.Equal(t, created.UserID, me.UserID)
	require.Equal(t, "dave", me.Username)
	require.Equal(t, "user", me.Role)

	require.NoError(t, client.Logout(ctx, login.AccessToken))

	_, err = client.Login(ctx, authsdk.LoginRequest{
		Identifier: "dave",
		Password:   "wrong-password",
	})
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, authsdk.ErrorCodeInvalidCredentials, apiErr.Code)
}

// TestLoginKeystrokeFactor registers an account with a keystroke enrollment
// built from raw capture events and verifies the rhythm check at login.
func TestLoginKeystrokeFactor(t *testing.T) {
	baseURL, container, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)
	ctx := context.Background()

	_, err := client.IssueOTP(ctx, authsdk.OTPIssueRequest{
		Email:    "erin@example.com",
		Username: "erin",
	})
	require.NoError(t, err)

	typed := func(start, dwell, gap int64, keys ...string) []authsdk.KeystrokeEvent {
		var events []authsdk.KeystrokeEvent
		ts := start
		for _, k := range keys {
			events = append(events,
				authsdk.KeystrokeEvent{Key: k, TimestampMillis: ts, Phase: "down"},
				authsdk.KeystrokeEvent{Key: k, TimestampMillis: ts + dwell, Phase: "up"},
			)
			ts += gap
		}
		return events
	}

	_, err = client.Register(ctx, authsdk.RegisterRequest{
		Username:        "erin",
		Email:           "erin@example.com",
		Password:        testPassword,
		Code:            fetchOTPCode(t, container, "erin@example.com"),
		KeystrokeEvents: typed(0, 80, 150, "s", "e", "c", "r", "e", "t"),
	})
	require.NoError(t, err)

	// Similar rhythm, same keys: accepted.
	login, err := client.Login(ctx, authsdk.LoginRequest{
		Identifier:      "erin",
		Password:        testPassword,
		KeystrokeEvents: typed(0, 85, 170, "s", "e", "c", "r", "e", "t"),
	})
	require.NoError(t, err)
	require.True(t, login.SessionEstablished)

	// Same rhythm, different keys: rejected even with the right password.
	_, err = client.Login(ctx, authsdk.LoginRequest{
		Identifier:      "erin",
		Password:        testPassword,
		KeystrokeEvents: typed(0, 80, 150, "w", "r", "o", "n", "g", "x"),
	})
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, authsdk.ErrorCodeBiometricMismatch, apiErr.Code)

	// No capture at all: the biometric factor is advisory.
	_, err = client.Login(ctx, authsdk.LoginRequest{
		Identifier: "erin",
		Password:   testPassword,
	})
	require.NoError(t, err)
}
