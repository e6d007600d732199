package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haritora-bridge/slimetora/internal/model"
	"github.com/haritora-bridge/slimetora/internal/timeutil"
)

func TestButtonTracker_FirstObservationReports(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	bt := NewButtonTracker(clock)

	fired := bt.Observe("tracker-1", model.MainButton, 1)
	assert.True(t, fired)
}

func TestButtonTracker_UnchangedNibbleDoesNotReport(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	bt := NewButtonTracker(clock)

	bt.Observe("tracker-1", model.MainButton, 1)
	fired := bt.Observe("tracker-1", model.MainButton, 1)
	assert.False(t, fired)
}

func TestButtonTracker_DebouncesRapidChanges(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	bt := NewButtonTracker(clock)

	assert.True(t, bt.Observe("tracker-1", model.MainButton, 1))
	clock.Advance(10 * time.Millisecond)
	assert.False(t, bt.Observe("tracker-1", model.MainButton, 2), "within debounce window")

	clock.Advance(45 * time.Millisecond)
	assert.True(t, bt.Observe("tracker-1", model.MainButton, 3), "past debounce window")
}

func TestButtonTracker_RolesAreIndependent(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	bt := NewButtonTracker(clock)

	assert.True(t, bt.Observe("tracker-1", model.MainButton, 1))
	assert.True(t, bt.Observe("tracker-1", model.SubButton, 1))
}

func TestDecodeSerialButtonNibbles(t *testing.T) {
	// positions 6 and 9 (1-indexed) -> string indices 5 and 8
	payload := "01234a6789"
	main, sub, err := DecodeSerialButtonNibbles(payload)
	require.NoError(t, err)
	assert.Equal(t, byte(0xa), main)
	assert.Equal(t, byte(0x8), sub)
}

func TestDecodeSerialButtonNibbles_TooShort(t *testing.T) {
	_, _, err := DecodeSerialButtonNibbles("1234")
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrDecodeFailed, kind)
}

func TestDecodeSerialButtonNibbles_NonHex(t *testing.T) {
	_, _, err := DecodeSerialButtonNibbles("01234z789")
	assert.Error(t, err)
}
