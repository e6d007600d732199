// Package interpreter turns raw BLE/serial frames into normalized model
// events, dispatching by tracker model the way the original desktop
// application's interpreter map did.
package interpreter

import (
	"github.com/haritora-bridge/slimetora/internal/model"
	"github.com/haritora-bridge/slimetora/internal/telemetry"
)

// Sink receives the side effects an interpreter produces: emulated-tracker
// lifecycle calls destined for the SlimeVR adapter (C7). Kept as an
// interface here so interpreter has no import dependency on slimevr.
type Sink interface {
	// EnsureTracker creates the emulated tracker for name if it does not
	// already exist, returning true if this call created it.
	EnsureTracker(name string, mac [6]byte, trackerType model.TrackerModel) (created bool, err error)
	SendRotation(name string, rotation model.Quaternion) error
	SendAccel(name string, accel model.Vector3) error
	SendBattery(name string, data model.BatteryData) error
	RemoveTracker(name string) error
}

// Interpreter decodes frames for one hardware model.
type Interpreter interface {
	Model() model.TrackerModel

	// ParseBLE decodes a single BLE characteristic notification. deviceID
	// identifies the peripheral (the bridge passes its MAC address); a
	// HaritoraX advertised-name prefix in deviceID restricts the frame to
	// that model, any other ID is accepted by every model. charName is the
	// characteristic's table name (not its UUID), payload the decoded
	// notification bytes.
	ParseBLE(ctx *Context, deviceID, charName string, payload []byte) error

	// ParseSerial decodes a single newline-framed serial line already
	// split into its `identifier:payload` halves. assignment is the
	// body-part label already resolved by the dongle backend (C6) for
	// this tracker slot, empty if not yet known.
	ParseSerial(ctx *Context, trackerName, assignment, identifier, payload string) error
}

// Context is passed to every interpreter call and bundles the dependencies
// needed to turn a decode into model events and emulator calls.
type Context struct {
	Sink    Sink
	Emit    func(model.Event)
	Buttons *telemetry.ButtonTracker
	Battery *telemetry.BLEBatteryTracker
}
