package interpreter

import (
	"encoding/hex"

	"github.com/haritora-bridge/slimetora/internal/imuframe"
	"github.com/haritora-bridge/slimetora/internal/model"
	"github.com/haritora-bridge/slimetora/internal/telemetry"
)

// ankleFrameLen is the byte length of an IMU frame that also carries a
// trailing ankle-motion extra (Wireless and X2 only).
const ankleFrameLen = 16

// base implements the identifier dispatch shared by every model; each
// concrete interpreter only needs to say whether it carries the ankle
// extra and what its model tag is.
type base struct {
	trackerType model.TrackerModel
	hasAnkle    bool
}

func (b base) Model() model.TrackerModel { return b.trackerType }

func (b base) parseSerial(ctx *Context, trackerName, assignment, identifier, payload string) error {
	if len(identifier) == 0 {
		return model.NewError(model.ErrUnknownIdentifier, nil)
	}

	switch identifier[0] {
	case 'x':
		return b.parseIMU(ctx, trackerName, payload)
	case 'v':
		return b.parseBattery(ctx, trackerName, payload)
	case 'r':
		return b.parseButton(ctx, trackerName, payload)
	case 'o':
		return b.parseSettings(ctx, trackerName, payload)
	case 'i':
		return b.parseInfo(ctx, trackerName, payload)
	case 'a':
		return b.parseLink(ctx, trackerName, payload)
	default:
		return model.NewError(model.ErrUnknownIdentifier, nil)
	}
}

func (b base) parseIMU(ctx *Context, trackerName, payload string) error {
	raw, err := hex.DecodeString(payload)
	if err != nil {
		return model.NewError(model.ErrDecodeFailed, err)
	}

	frame, err := imuframe.Decode(raw, trackerName)
	if err != nil {
		return err
	}

	if b.hasAnkle && len(raw) >= ankleFrameLen {
		ankle := uint16(raw[14]) | uint16(raw[15])<<8
		frame.Ankle = &ankle
	}

	magStatus, hasMag, err := telemetry.DecodeSerialMagStatus(raw)
	if err != nil {
		return err
	}
	if hasMag {
		frame.MagStatus = &magStatus
	}

	mac := SeedMAC(b.trackerType, trackerName)
	if err := EnsureConnected(ctx, trackerName, mac, b.trackerType, model.Serial); err != nil {
		return err
	}

	unit := imuframe.NormalizedRotation(frame.RawRotation)
	if err := ctx.Sink.SendRotation(trackerName, unit); err != nil {
		return err
	}
	if err := ctx.Sink.SendAccel(trackerName, frame.Accel); err != nil {
		return err
	}

	if ctx.Emit != nil {
		ctx.Emit(model.Event{Tracker: trackerName, ConnectionMode: model.Serial, TrackerType: b.trackerType, Kind: model.EventIMU, Data: frame})
		if hasMag {
			ctx.Emit(model.Event{Tracker: trackerName, ConnectionMode: model.Serial, TrackerType: b.trackerType, Kind: model.EventMag, Data: magStatus})
		}
	}
	return nil
}

func (b base) parseBattery(ctx *Context, trackerName, payload string) error {
	data, err := telemetry.DecodeSerialBattery([]byte(payload))
	if err != nil {
		return err
	}
	if err := ctx.Sink.SendBattery(trackerName, data); err != nil {
		return err
	}
	if ctx.Emit != nil {
		ctx.Emit(model.Event{Tracker: trackerName, ConnectionMode: model.Serial, TrackerType: b.trackerType, Kind: model.EventBattery, Data: data})
	}
	return nil
}

func (b base) parseButton(ctx *Context, trackerName, payload string) error {
	if ctx.Buttons == nil {
		return nil
	}
	main, sub, err := telemetry.DecodeSerialButtonNibbles(payload)
	if err != nil {
		return err
	}
	if ctx.Buttons.Observe(trackerName, model.MainButton, main) && ctx.Emit != nil {
		ctx.Emit(model.Event{Tracker: trackerName, ConnectionMode: model.Serial, TrackerType: b.trackerType, Kind: model.EventButton, Data: model.ButtonEvent{Role: model.MainButton}})
	}
	if ctx.Buttons.Observe(trackerName, model.SubButton, sub) && ctx.Emit != nil {
		ctx.Emit(model.Event{Tracker: trackerName, ConnectionMode: model.Serial, TrackerType: b.trackerType, Kind: model.EventButton, Data: model.ButtonEvent{Role: model.SubButton}})
	}
	return nil
}

func (b base) parseSettings(ctx *Context, trackerName, payload string) error {
	data, err := telemetry.DecodeSerialSettings(payload)
	if err != nil {
		return err
	}
	if ctx.Emit != nil {
		ctx.Emit(model.Event{Tracker: trackerName, ConnectionMode: model.Serial, TrackerType: b.trackerType, Kind: model.EventSettings, Data: data})
	}
	return nil
}

func (b base) parseInfo(ctx *Context, trackerName, payload string) error {
	data, _, _, err := telemetry.DecodeSerialInfo([]byte(payload))
	if err != nil {
		return err
	}
	if ctx.Emit != nil {
		ctx.Emit(model.Event{Tracker: trackerName, ConnectionMode: model.Serial, TrackerType: b.trackerType, Kind: model.EventInfo, Data: data})
	}
	return nil
}

func (b base) matchesBLEName(deviceID string) bool {
	hint, ok := model.ModelFromBLEName(deviceID)
	return !ok || hint == b.trackerType
}

func (b base) parseBLE(ctx *Context, deviceID, charName string, payload []byte) error {
	if !b.matchesBLEName(deviceID) {
		return model.NewError(model.ErrNoInterpreter, nil)
	}

	switch charName {
	case "Sensor":
		frame, err := imuframe.Decode(payload, deviceID)
		if err != nil {
			return err
		}
		if b.hasAnkle && len(payload) >= ankleFrameLen {
			ankle := uint16(payload[14]) | uint16(payload[15])<<8
			frame.Ankle = &ankle
		}

		mac := SeedMAC(b.trackerType, "")
		if err := EnsureConnected(ctx, deviceID, mac, b.trackerType, model.Bluetooth); err != nil {
			return err
		}
		unit := imuframe.NormalizedRotation(frame.RawRotation)
		if err := ctx.Sink.SendRotation(deviceID, unit); err != nil {
			return err
		}
		if err := ctx.Sink.SendAccel(deviceID, frame.Accel); err != nil {
			return err
		}
		if ctx.Emit != nil {
			ctx.Emit(model.Event{Tracker: deviceID, ConnectionMode: model.Bluetooth, TrackerType: b.trackerType, Kind: model.EventIMU, Data: frame})
		}
		return nil

	case "BatteryLevel":
		level, err := telemetry.DecodeBatteryLevel(payload)
		if err != nil {
			return err
		}
		if ctx.Battery == nil {
			return nil
		}
		data, ready := ctx.Battery.UpdateLevel(deviceID, level)
		if ready && ctx.Emit != nil {
			ctx.Emit(model.Event{Tracker: deviceID, ConnectionMode: model.Bluetooth, TrackerType: b.trackerType, Kind: model.EventBattery, Data: data})
		}
		return nil

	case "BatteryVoltage":
		mv, err := telemetry.DecodeBatteryVoltage(payload)
		if err != nil {
			return err
		}
		if ctx.Battery == nil {
			return nil
		}
		data, ready := ctx.Battery.UpdateVoltage(deviceID, mv)
		if ready && ctx.Emit != nil {
			ctx.Emit(model.Event{Tracker: deviceID, ConnectionMode: model.Bluetooth, TrackerType: b.trackerType, Kind: model.EventBattery, Data: data})
		}
		return nil

	case "ChargeStatus":
		if len(payload) < 1 {
			return model.NewError(model.ErrDecodeFailed, nil)
		}
		data, err := telemetry.UpdateChargeStatus(payload[0])
		if err != nil {
			return err
		}
		if ctx.Emit != nil {
			ctx.Emit(model.Event{Tracker: deviceID, ConnectionMode: model.Bluetooth, TrackerType: b.trackerType, Kind: model.EventBattery, Data: data})
		}
		return nil

	case "Magnetometer":
		status, err := telemetry.DecodeBLEMagStatus(payload)
		if err != nil {
			return err
		}
		if ctx.Emit != nil {
			ctx.Emit(model.Event{Tracker: deviceID, ConnectionMode: model.Bluetooth, TrackerType: b.trackerType, Kind: model.EventMag, Data: status})
		}
		return nil

	case "MainButton", "SecondaryButton", "TertiaryButton":
		if ctx.Buttons == nil || len(payload) < 1 {
			return model.NewError(model.ErrDecodeFailed, nil)
		}
		role := map[string]model.ButtonRole{
			"MainButton":      model.MainButton,
			"SecondaryButton": model.SubButton,
			"TertiaryButton":  model.TertiaryButton,
		}[charName]
		if ctx.Buttons.Observe(deviceID, role, payload[0]) && ctx.Emit != nil {
			ctx.Emit(model.Event{Tracker: deviceID, ConnectionMode: model.Bluetooth, TrackerType: b.trackerType, Kind: model.EventButton, Data: model.ButtonEvent{Role: role}})
		}
		return nil

	default:
		return model.NewError(model.ErrUnknownCharacteristic, nil)
	}
}

func (b base) parseLink(ctx *Context, trackerName, payload string) error {
	link, err := telemetry.DecodeSerialLinkQuality(payload)
	if err != nil {
		return err
	}
	if link.Lost {
		if err := ctx.Sink.RemoveTracker(trackerName); err != nil {
			return err
		}
		if ctx.Emit != nil {
			ctx.Emit(model.Event{Tracker: trackerName, ConnectionMode: model.Serial, TrackerType: b.trackerType, Kind: model.EventDisconnect})
		}
		return nil
	}
	if ctx.Emit != nil {
		ctx.Emit(model.Event{Tracker: trackerName, ConnectionMode: model.Serial, TrackerType: b.trackerType, Kind: model.EventConnection, Data: link})
	}
	return nil
}
