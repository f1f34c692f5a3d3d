package authsdk

// ============================================================================
// Keystroke capture wire types
// ============================================================================

// KeystrokeEvent is one raw key transition reported by the capture layer.
type KeystrokeEvent struct {
	Key             string `json:"key"`
	TimestampMillis int64  `json:"timestamp_ms"`
	Phase           string `json:"phase"` // "down" or "up"
}

// KeystrokeFingerprint is the derived typing-rhythm pattern.
type KeystrokeFingerprint struct {
	Sequence              []string `json:"sequence"`
	Intervals             []int64  `json:"intervals"`
	DwellTimes            []int64  `json:"dwell_times"`
	DurationMillis        int64    `json:"duration_ms"`
	AverageIntervalMillis float64  `json:"average_interval_ms"`
}

// KeystrokePattern is the tagged pattern submitted at registration and login.
// Kind selects which payload field is meaningful: "fingerprint" carries
// Fingerprint, "timings" carries the legacy flat Timings array.
type KeystrokePattern struct {
	Kind        string                `json:"kind"`
	Fingerprint *KeystrokeFingerprint `json:"fingerprint,omitempty"`
	Timings     []float64             `json:"timings,omitempty"`
}

// ============================================================================
// OTP endpoints
// ============================================================================

// OTPIssueRequest is the body for POST /v1/otp/issue.
type OTPIssueRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// OTPIssueResponse confirms a code was issued and emailed.
type OTPIssueResponse struct {
	Issued bool `json:"issued"`
	// ExpiresIn is the challenge lifetime in seconds.
	ExpiresIn int `json:"expires_in"`
}

// OTPVerifyRequest is the body for POST /v1/otp/verify.
type OTPVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// OTPVerifyResponse confirms the code was accepted and consumed.
type OTPVerifyResponse struct {
	Verified bool `json:"verified"`
}

// ============================================================================
// Registration and login
// ============================================================================

// RegisterRequest is the body for POST /v1/auth/register: the full account
// details plus the emailed code. The keystroke enrollment is optional and
// may be submitted either pre-extracted (KeystrokePattern) or as raw capture
// events (KeystrokeEvents) for server-side extraction. When both are present
// the pattern wins.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`

	KeystrokePattern *KeystrokePattern `json:"keystroke_pattern,omitempty"`
	KeystrokeEvents  []KeystrokeEvent  `json:"keystroke_events,omitempty"`
}

// RegisterResponse is the created account.
type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginRequest is the body for POST /v1/auth/login. Identifier is a username
// or email address.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`

	KeystrokePattern *KeystrokePattern `json:"keystroke_pattern,omitempty"`
	KeystrokeEvents  []KeystrokeEvent  `json:"keystroke_events,omitempty"`
}

// LoginResponse reports the authenticated principal. The session token rides
// in an HttpOnly cookie and is additionally returned for non-browser clients.
type LoginResponse struct {
	UserID             string `json:"user_id"`
	Username           string `json:"username"`
	Role               string `json:"role"`
	SessionEstablished bool   `json:"session_established"`
	AccessToken        string `json:"access_token,omitempty"`
}

// ============================================================================
// Session endpoints
// ============================================================================

// PrincipalResponse is the identity bound to the current session.
type PrincipalResponse struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
}

// LogoutResponse confirms the session cookie was cleared.
type LogoutResponse struct {
	LoggedOut bool `json:"logged_out"`
}

// ============================================================================
// Health endpoints
// ============================================================================

// HealthChecks reports per-dependency status on the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// ErrorResponse is the standard error shape of every endpoint.
type ErrorResponse struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
	// Remaining is set only on otp_mismatch errors.
	Remaining *int `json:"remaining,omitempty"`
}
