package telemetry

import (
	"encoding/binary"
	"encoding/json"
	"sync"

	"github.com/haritora-bridge/slimetora/internal/model"
)

// BLEBatteryState accumulates the piecemeal battery characteristics a BLE
// peripheral reports (BatteryLevel, BatteryVoltage, ChargeStatus each
// notify independently) into the combined events spec.md describes.
type BLEBatteryState struct {
	remaining *uint8
	voltage   *uint16
}

// UpdateLevel records a BatteryLevel notification. It only returns an event
// once a pending voltage reading is also available.
func (s *BLEBatteryState) UpdateLevel(percent uint8) (model.BatteryData, bool) {
	s.remaining = &percent
	return s.flushIfPaired()
}

// UpdateVoltage records a BatteryVoltage notification. It only returns an
// event once a pending remaining-percent reading is also available.
func (s *BLEBatteryState) UpdateVoltage(mv uint16) (model.BatteryData, bool) {
	s.voltage = &mv
	return s.flushIfPaired()
}

func (s *BLEBatteryState) flushIfPaired() (model.BatteryData, bool) {
	if s.remaining == nil || s.voltage == nil {
		return model.BatteryData{}, false
	}
	data := model.BatteryData{RemainingPercent: s.remaining, VoltageMV: s.voltage}
	s.remaining = nil
	s.voltage = nil
	return data, true
}

// BLEBatteryTracker owns the per-process, per-tracker BLEBatteryState map so
// the BatteryLevel/BatteryVoltage notifications of every connected device
// pair up independently.
type BLEBatteryTracker struct {
	mu    sync.Mutex
	state map[string]*BLEBatteryState
}

// NewBLEBatteryTracker creates an empty BLEBatteryTracker.
func NewBLEBatteryTracker() *BLEBatteryTracker {
	return &BLEBatteryTracker{state: make(map[string]*BLEBatteryState)}
}

func (t *BLEBatteryTracker) stateFor(tracker string) *BLEBatteryState {
	st, ok := t.state[tracker]
	if !ok {
		st = &BLEBatteryState{}
		t.state[tracker] = st
	}
	return st
}

// UpdateLevel records a BatteryLevel notification for tracker.
func (t *BLEBatteryTracker) UpdateLevel(tracker string, percent uint8) (model.BatteryData, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateFor(tracker).UpdateLevel(percent)
}

// UpdateVoltage records a BatteryVoltage notification for tracker.
func (t *BLEBatteryTracker) UpdateVoltage(tracker string, mv uint16) (model.BatteryData, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateFor(tracker).UpdateVoltage(mv)
}

// UpdateChargeStatus decodes a ChargeStatus notification and always emits,
// independent of any pending level/voltage pair.
func UpdateChargeStatus(raw byte) (model.BatteryData, error) {
	status, err := decodeChargeStatus(raw)
	if err != nil {
		return model.BatteryData{}, err
	}
	return model.BatteryData{Status: &status}, nil
}

func decodeChargeStatus(raw byte) (model.ChargeStatus, error) {
	switch raw {
	case 0:
		return model.Discharging, nil
	case 1:
		return model.Charging, nil
	case 2:
		return model.Charged, nil
	default:
		return model.ChargeUnknown, model.NewError(model.ErrUnknownStatus, nil)
	}
}

// DecodeBatteryLevel parses a BatteryLevel characteristic payload.
func DecodeBatteryLevel(payload []byte) (uint8, error) {
	if len(payload) < 1 {
		return 0, model.NewError(model.ErrDecodeFailed, nil)
	}
	return payload[0], nil
}

// DecodeBatteryVoltage parses a BatteryVoltage characteristic payload: a
// little-endian int16 cast to a positive millivolt reading.
func DecodeBatteryVoltage(payload []byte) (uint16, error) {
	if len(payload) < 2 {
		return 0, model.NewError(model.ErrDecodeFailed, nil)
	}
	raw := int16(binary.LittleEndian.Uint16(payload[:2]))
	return uint16(raw), nil
}

// serialBatteryFrame mirrors the JSON payload of a serial `v` frame.
type serialBatteryFrame struct {
	Remaining *uint8  `json:"battery remaining"`
	Voltage   *uint16 `json:"battery voltage"`
	Status    *string `json:"charge status"`
}

// DecodeSerialBattery parses a serial `v` frame's JSON payload.
func DecodeSerialBattery(payload []byte) (model.BatteryData, error) {
	var frame serialBatteryFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.BatteryData{}, model.NewError(model.ErrDecodeFailed, err)
	}

	data := model.BatteryData{RemainingPercent: frame.Remaining, VoltageMV: frame.Voltage}
	if frame.Status != nil {
		status, err := parseChargeStatusString(*frame.Status)
		if err != nil {
			return model.BatteryData{}, err
		}
		data.Status = &status
	}
	return data, nil
}

func parseChargeStatusString(s string) (model.ChargeStatus, error) {
	switch s {
	case "discharging":
		return model.Discharging, nil
	case "charging":
		return model.Charging, nil
	case "charged":
		return model.Charged, nil
	default:
		return model.ChargeUnknown, model.NewError(model.ErrUnknownStatus, nil)
	}
}
