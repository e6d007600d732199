package telemetry

import (
	"sync"
	"time"

	"github.com/haritora-bridge/slimetora/internal/model"
	"github.com/haritora-bridge/slimetora/internal/timeutil"
)

const buttonDebounce = 50 * time.Millisecond

type buttonState struct {
	nibble       byte
	hasNibble    bool
	lastReported time.Time
}

// ButtonTracker owns the per-process button map: per (tracker, role) last
// observed nibble and last-reported-press timestamp, used for edge
// detection with a 50ms debounce.
type ButtonTracker struct {
	clock timeutil.Clock
	mu    sync.Mutex
	state map[buttonKey]*buttonState
}

type buttonKey struct {
	tracker string
	role    model.ButtonRole
}

// NewButtonTracker creates a ButtonTracker driven by clock.
func NewButtonTracker(clock timeutil.Clock) *ButtonTracker {
	return &ButtonTracker{clock: clock, state: make(map[buttonKey]*buttonState)}
}

// Observe records a new nibble reading for (tracker, role) and reports
// whether this observation should be surfaced as a button event: the
// nibble must have changed and at least buttonDebounce must have elapsed
// since the role's last reported press.
func (b *ButtonTracker) Observe(tracker string, role model.ButtonRole, nibble byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := buttonKey{tracker: tracker, role: role}
	st, ok := b.state[key]
	if !ok {
		st = &buttonState{}
		b.state[key] = st
	}

	changed := !st.hasNibble || st.nibble != nibble
	st.nibble = nibble
	st.hasNibble = true

	if !changed {
		return false
	}

	now := b.clock.Now()
	if !st.lastReported.IsZero() && now.Sub(st.lastReported) < buttonDebounce {
		return false
	}

	st.lastReported = now
	return true
}

// DecodeSerialButtonNibbles extracts the main (6th character) and sub (9th
// character) hex nibbles from a serial button payload.
func DecodeSerialButtonNibbles(payload string) (main, sub byte, err error) {
	if len(payload) < 9 {
		return 0, 0, model.NewError(model.ErrDecodeFailed, nil)
	}
	main, err = hexNibble(payload[5])
	if err != nil {
		return 0, 0, err
	}
	sub, err = hexNibble(payload[8])
	if err != nil {
		return 0, 0, err
	}
	return main, sub, nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, model.NewError(model.ErrDecodeFailed, nil)
	}
}
