package interpreter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haritora-bridge/slimetora/internal/model"
	"github.com/haritora-bridge/slimetora/internal/telemetry"
	"github.com/haritora-bridge/slimetora/internal/timeutil"
)

func TestBase_ParseBLE_NameMismatchYieldsNoInterpreter(t *testing.T) {
	sink := newFakeSink()
	ctx := &Context{Sink: sink, Emit: func(model.Event) {}}
	wireless := NewWireless()

	err := wireless.ParseBLE(ctx, "HaritoraX2-1234", "Sensor", make([]byte, 14))
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrNoInterpreter, kind)
}

func TestBase_ParseBLE_IMUWithoutNameHintIsAccepted(t *testing.T) {
	sink := newFakeSink()
	var events []model.Event
	ctx := &Context{Sink: sink, Emit: func(e model.Event) { events = append(events, e) }}
	wired := NewWired()

	err := wired.ParseBLE(ctx, "aa:bb:cc:dd:ee:ff", "Sensor", make([]byte, 14))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.EventConnect, events[0].Kind)
	assert.Equal(t, model.EventIMU, events[1].Kind)
}

func TestBase_ParseSerial_UnknownIdentifier(t *testing.T) {
	sink := newFakeSink()
	ctx := &Context{Sink: sink, Emit: func(model.Event) {}}
	wired := NewWired()

	err := wired.ParseSerial(ctx, "tracker-1", "", "z", "")
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrUnknownIdentifier, kind)
}

func TestBase_ParseSerial_ButtonFramesDebounceThroughSharedTracker(t *testing.T) {
	sink := newFakeSink()
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	buttons := telemetry.NewButtonTracker(clock)

	var events []model.Event
	ctx := &Context{Sink: sink, Emit: func(e model.Event) { events = append(events, e) }, Buttons: buttons}
	wired := NewWired()

	payload := "01234a6789" // main nibble at idx5='a', sub at idx8='8'
	require.NoError(t, wired.ParseSerial(ctx, "tracker-1", "", "r", payload))
	require.Len(t, events, 2)

	events = nil
	require.NoError(t, wired.ParseSerial(ctx, "tracker-1", "", "r", payload))
	assert.Len(t, events, 0, "unchanged nibbles must not re-emit")
}
