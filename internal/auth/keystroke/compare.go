package keystroke

import "math"

const (
	// DefaultTolerance is the base tolerance for fingerprint comparison.
	DefaultTolerance = 0.6

	// Tolerance floors. Whatever base tolerance a caller passes, interval
	// comparison never gets stricter than 50% and duration never stricter
	// than 80%. Human typing rhythm varies a lot run-to-run and a false
	// reject here locks out a user whose password was already correct.
	minIntervalTolerance = 0.5
	minDurationTolerance = 0.8

	// Legacy timing-trace comparison: an element matches when its
	// similarity ratio clears 1-timingTolerance, and the trace matches
	// when at least timingMatchRatio of elements do.
	timingTolerance  = 0.3
	timingMatchRatio = 0.7
)

// Match compares a stored pattern with a freshly captured one. Patterns of
// different kinds never match; within a kind the comparison strategy is
// picked by the tag. baseTolerance only applies to the fingerprint kind.
func Match(stored, current *Pattern, baseTolerance float64) bool {
	if stored == nil || current == nil {
		return false
	}
	if stored.Kind != current.Kind {
		return false
	}

	switch stored.Kind {
	case KindFingerprint:
		return matchFingerprint(stored.Fingerprint, current.Fingerprint, baseTolerance)
	case KindTimings:
		return matchTimings(stored.Timings, current.Timings)
	default:
		return false
	}
}

// matchFingerprint runs the ordered short-circuit checks: presence, sequence
// length, per-position key identity, then the loose timing gates.
func matchFingerprint(stored, current *Fingerprint, baseTolerance float64) bool {
	if stored == nil || current == nil || stored.Sequence == nil || current.Sequence == nil {
		return false
	}

	// The same credential typed twice must produce the same keystrokes.
	// These are exact gates, not similarity scores.
	if len(stored.Sequence) != len(current.Sequence) {
		return false
	}
	for i := range stored.Sequence {
		if stored.Sequence[i] != current.Sequence[i] {
			return false
		}
	}

	intervalTolerance := math.Max(baseTolerance, minIntervalTolerance)
	intervalDiff := math.Abs(stored.AverageIntervalMillis - current.AverageIntervalMillis)
	if intervalDiff > stored.AverageIntervalMillis*intervalTolerance {
		return false
	}

	durationTolerance := math.Max(baseTolerance*1.5, minDurationTolerance)
	durationDiff := math.Abs(float64(stored.DurationMillis - current.DurationMillis))
	if durationDiff > float64(stored.DurationMillis)*durationTolerance {
		return false
	}

	return true
}

// matchTimings compares two equal-length per-character timing arrays by
// per-element similarity ratio.
func matchTimings(stored, current *TimingTrace) bool {
	if stored == nil || current == nil || stored.Timings == nil || current.Timings == nil {
		return false
	}
	if len(stored.Timings) != len(current.Timings) || len(stored.Timings) == 0 {
		return false
	}

	matches := 0
	for i := range stored.Timings {
		s, c := stored.Timings[i], current.Timings[i]
		if s == 0 && c == 0 {
			matches++
			continue
		}

		similarity := 1 - math.Abs(s-c)/math.Max(s, c)
		if similarity >= 1-timingTolerance {
			matches++
		}
	}

	return float64(matches)/float64(len(stored.Timings)) >= timingMatchRatio
}
