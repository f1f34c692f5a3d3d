// Package mail delivers transactional email. The auth service only ever
// sends OTP codes, so the interface stays deliberately small.
package mail

import "context"

// Sender delivers a single email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}
