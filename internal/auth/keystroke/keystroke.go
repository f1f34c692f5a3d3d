// Package keystroke derives and compares typing-rhythm fingerprints used as
// a soft secondary login factor. A fingerprint is never a primary
// credential: comparison is deliberately generous so that ordinary run-to-run
// typing variance does not lock users out.
package keystroke

// Phase marks whether an event is a key press or release.
type Phase string

const (
	PhaseDown Phase = "down"
	PhaseUp   Phase = "up"
)

// Event is a single timestamped key transition reported by the capture
// layer. Events are ephemeral; only the derived Fingerprint is persisted.
type Event struct {
	Key             string `json:"key"`
	TimestampMillis int64  `json:"timestamp_ms"`
	Phase           Phase  `json:"phase"`
}

// Fingerprint is the normalized pattern record extracted from a capture
// session: which keys were pressed, in what order, and with what rhythm.
type Fingerprint struct {
	// Sequence holds the keys in press order, one entry per DOWN event.
	Sequence []string `json:"sequence"`
	// Intervals holds the gaps in ms between consecutive DOWN events,
	// len(Sequence)-1 entries for a non-empty capture.
	Intervals []int64 `json:"intervals"`
	// DwellTimes holds per-key hold durations in ms (UP minus matching
	// DOWN). At most one per DOWN event; unreleased keys contribute none.
	DwellTimes []int64 `json:"dwell_times"`
	// DurationMillis is last event timestamp minus first, 0 with fewer
	// than two events.
	DurationMillis int64 `json:"duration_ms"`
	// AverageIntervalMillis is the mean of Intervals, 0 when empty.
	AverageIntervalMillis float64 `json:"average_interval_ms"`
}

// TimingTrace is the legacy pattern shape: a flat per-character timing array
// captured during password re-entry. Kept for accounts enrolled before
// event-level capture existed.
type TimingTrace struct {
	Timings []float64 `json:"timings"`
}

// Kind discriminates the two pattern representations. Dispatch is always on
// this tag, never on which fields happen to be set.
type Kind string

const (
	KindFingerprint Kind = "fingerprint"
	KindTimings     Kind = "timings"
)

// Pattern is the tagged variant stored on a user record and submitted at
// login. Exactly one of Fingerprint/Timings is set, per Kind.
type Pattern struct {
	Kind        Kind         `json:"kind"`
	Fingerprint *Fingerprint `json:"fingerprint,omitempty"`
	Timings     *TimingTrace `json:"timings,omitempty"`
}

// NewFingerprintPattern wraps a Fingerprint in its tagged form.
func NewFingerprintPattern(fp Fingerprint) *Pattern {
	return &Pattern{Kind: KindFingerprint, Fingerprint: &fp}
}

// NewTimingsPattern wraps a TimingTrace in its tagged form.
func NewTimingsPattern(tr TimingTrace) *Pattern {
	return &Pattern{Kind: KindTimings, Timings: &tr}
}
