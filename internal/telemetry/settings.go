package telemetry

import "github.com/haritora-bridge/slimetora/internal/model"

// DecodeSerialSettings parses a serial `o` frame payload. The fields of
// interest sit at fixed character positions: the 5th gives the FPS mode,
// the 6th the sensor mode, the 10th a 3-bit auto-correction field (accel,
// gyro, mag from high to low bit), and the 13th whether ankle motion is
// enabled.
func DecodeSerialSettings(payload string) (model.SettingsData, error) {
	if len(payload) < 13 {
		return model.SettingsData{}, model.NewError(model.ErrDecodeFailed, nil)
	}

	fpsNibble, err := hexNibble(payload[4])
	if err != nil {
		return model.SettingsData{}, err
	}
	sensorNibble, err := hexNibble(payload[5])
	if err != nil {
		return model.SettingsData{}, err
	}
	autoNibble, err := hexNibble(payload[9])
	if err != nil {
		return model.SettingsData{}, err
	}
	ankleNibble, err := hexNibble(payload[12])
	if err != nil {
		return model.SettingsData{}, err
	}

	fpsMode := 100
	if fpsNibble == 0 {
		fpsMode = 50
	}

	sensorMode := 1
	if sensorNibble == 0 {
		sensorMode = 2
	}

	return model.SettingsData{
		FPSMode:      fpsMode,
		SensorMode:   sensorMode,
		AutoAccel:    autoNibble&0b100 != 0,
		AutoGyro:     autoNibble&0b010 != 0,
		AutoMag:      autoNibble&0b001 != 0,
		AnkleEnabled: ankleNibble != 0,
	}, nil
}
