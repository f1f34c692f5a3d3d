package keystroke

// Modifier and control keys carry no typing-rhythm signal and would corrupt
// sequence matching between capture sessions, so they are dropped entirely.
var excludedKeys = map[string]struct{}{
	"Shift":    {},
	"Control":  {},
	"Alt":      {},
	"Meta":     {},
	"Tab":      {},
	"CapsLock": {},
	"Escape":   {},
}

// Excluded reports whether events for key are ignored during extraction.
func Excluded(key string) bool {
	_, ok := excludedKeys[key]
	return ok
}

type pendingDown struct {
	key     string
	ts      int64
	matched bool
}

// Extract reduces an ordered event stream to a Fingerprint. It is pure and
// deterministic; an empty stream yields a zero Fingerprint, never an error.
//
// A DOWN event appends to the sequence and records the interval from the
// previous DOWN. An UP event pairs with the earliest still-unmatched DOWN of
// the same key, so key-repeat and doubled letters each get their own dwell
// time.
func Extract(events []Event) Fingerprint {
	var fp Fingerprint

	var (
		downs    []pendingDown
		lastDown int64
		haveDown bool
		firstTS  int64
		lastTS   int64
		seen     int
	)

	for _, ev := range events {
		if Excluded(ev.Key) {
			continue
		}

		if seen == 0 {
			firstTS = ev.TimestampMillis
		}
		lastTS = ev.TimestampMillis
		seen++

		switch ev.Phase {
		case PhaseDown:
			fp.Sequence = append(fp.Sequence, ev.Key)
			if haveDown {
				fp.Intervals = append(fp.Intervals, ev.TimestampMillis-lastDown)
			}
			lastDown = ev.TimestampMillis
			haveDown = true
			downs = append(downs, pendingDown{key: ev.Key, ts: ev.TimestampMillis})

		case PhaseUp:
			for i := range downs {
				if downs[i].key == ev.Key && !downs[i].matched {
					downs[i].matched = true
					fp.DwellTimes = append(fp.DwellTimes, ev.TimestampMillis-downs[i].ts)
					break
				}
			}
		}
	}

	if seen >= 2 {
		fp.DurationMillis = lastTS - firstTS
	}
	if len(fp.Intervals) > 0 {
		var sum int64
		for _, iv := range fp.Intervals {
			sum += iv
		}
		fp.AverageIntervalMillis = float64(sum) / float64(len(fp.Intervals))
	}

	return fp
}

// Recorder is a caller-owned capture session. Each login or registration
// attempt gets its own Recorder; there is no shared capture state.
type Recorder struct {
	events []Event
}

// KeyDown records a key press at the given wall-clock millisecond.
func (r *Recorder) KeyDown(key string, tsMillis int64) {
	r.events = append(r.events, Event{Key: key, TimestampMillis: tsMillis, Phase: PhaseDown})
}

// KeyUp records a key release.
func (r *Recorder) KeyUp(key string, tsMillis int64) {
	r.events = append(r.events, Event{Key: key, TimestampMillis: tsMillis, Phase: PhaseUp})
}

// Events returns the recorded events in capture order.
func (r *Recorder) Events() []Event { return r.events }

// Fingerprint extracts the pattern from everything recorded so far.
func (r *Recorder) Fingerprint() Fingerprint { return Extract(r.events) }

// Reset discards the recorded events so the Recorder can be reused.
func (r *Recorder) Reset() { r.events = r.events[:0] }
