package http

import (
	"github.com/eventhive/auth/internal/auth/keystroke"
	"github.com/eventhive/auth/pkg/authsdk"
)

// patternFromRequest turns the optional keystroke payload of a register or
// login request into a domain pattern. A pre-extracted pattern wins over raw
// events; raw events go through server-side extraction. Returns nil when the
// client submitted neither, which callers treat as "no capture".
func patternFromRequest(pattern *authsdk.KeystrokePattern, events []authsdk.KeystrokeEvent) *keystroke.Pattern {
	if pattern != nil {
		return decodePattern(pattern)
	}

	if len(events) == 0 {
		return nil
	}
	evs := make([]keystroke.Event, 0, len(events))
	for _, ev := range events {
		evs = append(evs, keystroke.Event{
			Key:             ev.Key,
			TimestampMillis: ev.TimestampMillis,
			Phase:           keystroke.Phase(ev.Phase),
		})
	}
	return keystroke.NewFingerprintPattern(keystroke.Extract(evs))
}

func decodePattern(p *authsdk.KeystrokePattern) *keystroke.Pattern {
	switch keystroke.Kind(p.Kind) {
	case keystroke.KindFingerprint:
		if p.Fingerprint == nil {
			return nil
		}
		return keystroke.NewFingerprintPattern(keystroke.Fingerprint{
			Sequence:              p.Fingerprint.Sequence,
			Intervals:             p.Fingerprint.Intervals,
			DwellTimes:            p.Fingerprint.DwellTimes,
			DurationMillis:        p.Fingerprint.DurationMillis,
			AverageIntervalMillis: p.Fingerprint.AverageIntervalMillis,
		})
	case keystroke.KindTimings:
		return keystroke.NewTimingsPattern(keystroke.TimingTrace{Timings: p.Timings})
	default:
		return nil
	}
}
