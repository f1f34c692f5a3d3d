package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/eventhive/auth/internal/auth/service"
	"github.com/eventhive/auth/internal/auth/store/drivers/sqlite"
	"github.com/eventhive/auth/pkg/authsdk"
	"github.com/eventhive/auth/pkg/httpx"
	"github.com/eventhive/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	mu   sync.Mutex
	last string
}

func (m *captureMailer) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = textBody
	return nil
}

var codeRe = regexp.MustCompile(`\b\d{6}\b`)

func (m *captureMailer) code(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	code := codeRe.FindString(m.last)
	require.Len(t, code, 6)
	return code
}

func newTestServer(t *testing.T) (*authsdk.Client, *captureMailer) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mailer := &captureMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	signer := jwtx.NewSigner("test-secret", "eventhive-auth", time.Hour)

	users := &service.UserService{Store: st}
	router := NewRouter(signer, "test", st, logger)
	router.AuthService = &service.AuthService{
		Store:    st,
		Users:    users,
		OTP:      &service.OTPService{Store: st, Mailer: mailer},
		Sessions: &service.SessionService{Signer: signer},
		Logger:   logger,
	}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return authsdk.NewClient(srv.URL), mailer
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	buf, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(buf)
}

func apiErr(t *testing.T, err error) *authsdk.APIError {
	t.Helper()
	var apiError *authsdk.APIError
	require.True(t, errors.As(err, &apiError), "expected APIError, got %v", err)
	return apiError
}

func TestSignupLoginSessionFlow(t *testing.T) {
	ctx := context.Background()
	client, mailer := newTestServer(t)

	issued, err := client.IssueOTP(ctx, authsdk.OTPIssueRequest{
		Email:    "alice@example.com",
		Username: "alice",
	})
	require.NoError(t, err)
	require.True(t, issued.Issued)
	require.Equal(t, 300, issued.ExpiresIn)

	created, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
		Code:     mailer.code(t),
		KeystrokePattern: &authsdk.KeystrokePattern{
			Kind: "fingerprint",
			Fingerprint: &authsdk.KeystrokeFingerprint{
				Sequence:              []string{"h", "i"},
				Intervals:             []int64{120},
				DwellTimes:            []int64{70, 80},
				DurationMillis:        200,
				AverageIntervalMillis: 120,
			},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "alice", created.Username)
	require.Equal(t, "alice@example.com", created.Email)
	require.Equal(t, "user", created.Role)
	require.NotEmpty(t, created.UserID)

	login, err := client.Login(ctx, authsdk.LoginRequest{
		Identifier: "alice",
		Password:   "hunter22",
		KeystrokePattern: &authsdk.KeystrokePattern{
			Kind: "fingerprint",
			Fingerprint: &authsdk.KeystrokeFingerprint{
				Sequence:              []string{"h", "i"},
				Intervals:             []int64{130},
				DwellTimes:            []int64{72, 78},
				DurationMillis:        215,
				AverageIntervalMillis: 130,
			},
		},
	})
	require.NoError(t, err)
	require.True(t, login.SessionEstablished)
	require.NotEmpty(t, login.AccessToken)
	require.Equal(t, created.UserID, login.UserID)

	me, err := client.Me(ctx, login.AccessToken)
	require.NoError(t, err)
	require.Equal(t, created.UserID, me.UserID)
	require.Equal(t, "alice", me.Username)
	require.Equal(t, "user", me.Role)
	require.NotEmpty(t, me.SessionID)

	require.NoError(t, client.Logout(ctx, login.AccessToken))
}

func TestLoginSetsSessionCookie(t *testing.T) {
	ctx := context.Background()
	client, mailer := newTestServer(t)

	_, err := client.IssueOTP(ctx, authsdk.OTPIssueRequest{Email: "bob@example.com", Username: "bobby"})
	require.NoError(t, err)
	_, err = client.Register(ctx, authsdk.RegisterRequest{
		Username: "bobby", Email: "bob@example.com", Password: "hunter22", Code: mailer.code(t),
	})
	require.NoError(t, err)

	resp, err := client.HTTPClient.Post(client.BaseURL+"/v1/auth/login", "application/json",
		jsonBody(t, authsdk.LoginRequest{Identifier: "bobby", Password: "hunter22"}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == httpx.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	require.True(t, sessionCookie.HttpOnly)
	require.NotEmpty(t, sessionCookie.Value)

	// The cookie authenticates /v1/session/me without a bearer header.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.BaseURL+"/v1/session/me", nil)
	require.NoError(t, err)
	req.AddCookie(sessionCookie)

	meResp, err := client.HTTPClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = meResp.Body.Close() }()
	require.Equal(t, http.StatusOK, meResp.StatusCode)
}

func TestOTPIssueRejectsTakenIdentity(t *testing.T) {
	ctx := context.Background()
	client, mailer := newTestServer(t)

	_, err := client.IssueOTP(ctx, authsdk.OTPIssueRequest{Email: "carol@example.com", Username: "carol"})
	require.NoError(t, err)
	_, err = client.Register(ctx, authsdk.RegisterRequest{
		Username: "carol", Email: "carol@example.com", Password: "hunter22", Code: mailer.code(t),
	})
	require.NoError(t, err)

	_, err = client.IssueOTP(ctx, authsdk.OTPIssueRequest{Email: "other@example.com", Username: "carol"})
	e := apiErr(t, err)
	require.Equal(t, http.StatusConflict, e.StatusCode)
	require.Equal(t, authsdk.ErrorCodeUsernameTaken, e.Code)

	_, err = client.IssueOTP(ctx, authsdk.OTPIssueRequest{Email: "CAROL@example.com", Username: "freshname"})
	e = apiErr(t, err)
	require.Equal(t, authsdk.ErrorCodeEmailTaken, e.Code)

	_, err = client.IssueOTP(ctx, authsdk.OTPIssueRequest{Email: "not-an-email", Username: "freshname"})
	e = apiErr(t, err)
	require.Equal(t, http.StatusBadRequest, e.StatusCode)
	require.Equal(t, authsdk.ErrorCodeValidation, e.Code)
}

func TestRegisterWrongCodeReportsRemaining(t *testing.T) {
	ctx := context.Background()
	client, mailer := newTestServer(t)

	_, err := client.IssueOTP(ctx, authsdk.OTPIssueRequest{Email: "dave@example.com", Username: "dave"})
	require.NoError(t, err)

	wrong := "000000"
	if mailer.code(t) == wrong {
		wrong = "000001"
	}

	req := authsdk.RegisterRequest{
		Username: "dave", Email: "dave@example.com", Password: "hunter22", Code: wrong,
	}

	for _, remaining := range []int{2, 1} {
		_, err = client.Register(ctx, req)
		e := apiErr(t, err)
		require.Equal(t, http.StatusBadRequest, e.StatusCode)
		require.Equal(t, authsdk.ErrorCodeOTPMismatch, e.Code)
		require.NotNil(t, e.Remaining)
		require.Equal(t, remaining, *e.Remaining)
	}

	req.Code = mailer.code(t)
	_, err = client.Register(ctx, req)
	require.NoError(t, err)
}

func TestLoginErrorMapping(t *testing.T) {
	ctx := context.Background()
	client, mailer := newTestServer(t)

	_, err := client.IssueOTP(ctx, authsdk.OTPIssueRequest{Email: "erin@example.com", Username: "erin"})
	require.NoError(t, err)
	_, err = client.Register(ctx, authsdk.RegisterRequest{
		Username: "erin", Email: "erin@example.com", Password: "hunter22", Code: mailer.code(t),
		KeystrokePattern: &authsdk.KeystrokePattern{
			Kind: "fingerprint",
			Fingerprint: &authsdk.KeystrokeFingerprint{
				Sequence:              []string{"a", "b"},
				Intervals:             []int64{100},
				DwellTimes:            []int64{60, 60},
				DurationMillis:        170,
				AverageIntervalMillis: 100,
			},
		},
	})
	require.NoError(t, err)

	_, err = client.Login(ctx, authsdk.LoginRequest{Identifier: "erin", Password: "wrong"})
	e := apiErr(t, err)
	require.Equal(t, http.StatusUnauthorized, e.StatusCode)
	require.Equal(t, authsdk.ErrorCodeInvalidCredentials, e.Code)

	// Right password, wrong typing rhythm.
	_, err = client.Login(ctx, authsdk.LoginRequest{
		Identifier: "erin", Password: "hunter22",
		KeystrokePattern: &authsdk.KeystrokePattern{
			Kind: "fingerprint",
			Fingerprint: &authsdk.KeystrokeFingerprint{
				Sequence:              []string{"x", "y"},
				Intervals:             []int64{100},
				DwellTimes:            []int64{60, 60},
				DurationMillis:        170,
				AverageIntervalMillis: 100,
			},
		},
	})
	e = apiErr(t, err)
	require.Equal(t, http.StatusUnauthorized, e.StatusCode)
	require.Equal(t, authsdk.ErrorCodeBiometricMismatch, e.Code)
}

func TestRegisterExtractsRawEvents(t *testing.T) {
	ctx := context.Background()
	client, mailer := newTestServer(t)

	_, err := client.IssueOTP(ctx, authsdk.OTPIssueRequest{Email: "fred@example.com", Username: "fred"})
	require.NoError(t, err)

	_, err = client.Register(ctx, authsdk.RegisterRequest{
		Username: "fred", Email: "fred@example.com", Password: "hunter22", Code: mailer.code(t),
		KeystrokeEvents: []authsdk.KeystrokeEvent{
			{Key: "h", TimestampMillis: 0, Phase: "down"},
			{Key: "h", TimestampMillis: 80, Phase: "up"},
			{Key: "i", TimestampMillis: 150, Phase: "down"},
			{Key: "i", TimestampMillis: 230, Phase: "up"},
		},
	})
	require.NoError(t, err)

	// The server-side extraction produced the enrolled fingerprint: a login
	// typed with the same rhythm passes, a different word does not.
	_, err = client.Login(ctx, authsdk.LoginRequest{
		Identifier: "fred", Password: "hunter22",
		KeystrokeEvents: []authsdk.KeystrokeEvent{
			{Key: "h", TimestampMillis: 0, Phase: "down"},
			{Key: "h", TimestampMillis: 85, Phase: "up"},
			{Key: "i", TimestampMillis: 160, Phase: "down"},
			{Key: "i", TimestampMillis: 235, Phase: "up"},
		},
	})
	require.NoError(t, err)

	_, err = client.Login(ctx, authsdk.LoginRequest{
		Identifier: "fred", Password: "hunter22",
		KeystrokeEvents: []authsdk.KeystrokeEvent{
			{Key: "n", TimestampMillis: 0, Phase: "down"},
			{Key: "n", TimestampMillis: 80, Phase: "up"},
			{Key: "o", TimestampMillis: 150, Phase: "down"},
			{Key: "o", TimestampMillis: 230, Phase: "up"},
		},
	})
	e := apiErr(t, err)
	require.Equal(t, authsdk.ErrorCodeBiometricMismatch, e.Code)
}

func TestSessionEndpointsRejectBadTokens(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)

	_, err := client.Me(ctx, "not-a-token")
	e := apiErr(t, err)
	require.Equal(t, http.StatusUnauthorized, e.StatusCode)
	require.Equal(t, authsdk.ErrorCodeInvalidToken, e.Code)

	// Correctly signed but with a subject that is not a ULID.
	forged, err := jwtx.NewSigner("test-secret", "eventhive-auth", time.Hour).
		Mint("not-a-ulid", "mallory", "user", "sid-1")
	require.NoError(t, err)

	_, err = client.Me(ctx, forged)
	e = apiErr(t, err)
	require.Equal(t, http.StatusUnauthorized, e.StatusCode)
	require.Equal(t, authsdk.ErrorCodeInvalidToken, e.Code)

	// Logout is stateless and succeeds without a session.
	require.NoError(t, client.Logout(ctx, ""))
}

func TestHealthEndpoints(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestServer(t)

	livez, err := client.Livez(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", livez.Status)
	require.Equal(t, "test", livez.Version)

	readyz, err := client.Readyz(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", readyz.Status)
	require.NotNil(t, readyz.Checks)
	require.Equal(t, "ok", readyz.Checks.Database)
}
