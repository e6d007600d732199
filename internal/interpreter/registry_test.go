package interpreter

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haritora-bridge/slimetora/internal/model"
)

type fakeSink struct {
	created   map[string]bool
	rotations map[string]model.Quaternion
	accels    map[string]model.Vector3
	battery   map[string]model.BatteryData
	removed   map[string]bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		created:   map[string]bool{},
		rotations: map[string]model.Quaternion{},
		accels:    map[string]model.Vector3{},
		battery:   map[string]model.BatteryData{},
		removed:   map[string]bool{},
	}
}

func (f *fakeSink) EnsureTracker(name string, mac [6]byte, trackerType model.TrackerModel) (bool, error) {
	if f.created[name] {
		return false, nil
	}
	f.created[name] = true
	return true, nil
}

func (f *fakeSink) SendRotation(name string, rotation model.Quaternion) error {
	f.rotations[name] = rotation
	return nil
}

func (f *fakeSink) SendAccel(name string, accel model.Vector3) error {
	f.accels[name] = accel
	return nil
}

func (f *fakeSink) SendBattery(name string, data model.BatteryData) error {
	f.battery[name] = data
	return nil
}

func (f *fakeSink) RemoveTracker(name string) error {
	f.removed[name] = true
	return nil
}

func zeroIMUHex() string {
	return hex.EncodeToString(make([]byte, 14))
}

func TestRegistry_ProcessSerial_NoActiveModels(t *testing.T) {
	sink := newFakeSink()
	var events []model.Event
	r := NewRegistry(sink, func(e model.Event) { events = append(events, e) }, nil)

	err := r.ProcessSerial("tracker-1", "leftAnkle", model.Wireless, "x", zeroIMUHex())
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrNoInterpreter, kind)
}

func TestRegistry_ProcessSerial_IMUFrameCreatesTrackerAndEmits(t *testing.T) {
	sink := newFakeSink()
	var events []model.Event
	r := NewRegistry(sink, func(e model.Event) { events = append(events, e) }, nil)
	r.StartInterpreting(model.Wireless)

	err := r.ProcessSerial("tracker-1", "leftAnkle", model.Wireless, "x", zeroIMUHex())
	require.NoError(t, err)

	assert.True(t, sink.created["tracker-1"])
	require.Len(t, events, 3) // connect + imu + mag
	assert.Equal(t, model.EventConnect, events[0].Kind)
	assert.Equal(t, model.EventIMU, events[1].Kind)
	assert.Equal(t, model.EventMag, events[2].Kind)
}

func TestRegistry_ProcessSerial_SecondFrameDoesNotReconnect(t *testing.T) {
	sink := newFakeSink()
	var events []model.Event
	r := NewRegistry(sink, func(e model.Event) { events = append(events, e) }, nil)
	r.StartInterpreting(model.Wireless)

	require.NoError(t, r.ProcessSerial("tracker-1", "leftAnkle", model.Wireless, "x", zeroIMUHex()))
	events = nil
	require.NoError(t, r.ProcessSerial("tracker-1", "leftAnkle", model.Wireless, "x", zeroIMUHex()))

	require.Len(t, events, 2) // imu + mag
	assert.Equal(t, model.EventIMU, events[0].Kind)
	assert.Equal(t, model.EventMag, events[1].Kind)
}

func TestRegistry_StopInterpreting(t *testing.T) {
	sink := newFakeSink()
	r := NewRegistry(sink, func(model.Event) {}, nil)
	r.StartInterpreting(model.Wireless)
	r.StopInterpreting(model.Wireless)

	err := r.ProcessSerial("tracker-1", "", model.Wireless, "x", zeroIMUHex())
	require.Error(t, err)
}

func TestSeedMAC_WirelessUsesFixedByte(t *testing.T) {
	mac := SeedMAC(model.Wireless, "")
	assert.Equal(t, [6]byte{0, 0, 0, 0, 0, 0x01}, mac)
}

func TestSeedMAC_WiredDerivesFromSerial(t *testing.T) {
	macA := SeedMAC(model.Wired, "HX-001")
	macB := SeedMAC(model.Wired, "HX-002")
	assert.NotEqual(t, macA, macB)
}

func TestSeedMAC_WiredNoSerialFallsBackToFixedByte(t *testing.T) {
	mac := SeedMAC(model.Wired, "")
	assert.Equal(t, [6]byte{0, 0, 0, 0, 0, 0x01}, mac)
}
