package telemetry

import (
	"encoding/base64"
	"strings"

	"github.com/haritora-bridge/slimetora/internal/model"
)

// DecodeBLEMagStatus maps a Magnetometer characteristic's first payload byte
// to a MagStatus grade.
func DecodeBLEMagStatus(payload []byte) (model.MagStatus, error) {
	if len(payload) < 1 {
		return model.MagUnknown, model.NewError(model.ErrDecodeFailed, nil)
	}
	switch payload[0] {
	case 3:
		return model.MagGreat, nil
	case 2:
		return model.MagOkay, nil
	case 1:
		return model.MagBad, nil
	case 0:
		return model.MagVeryBad, nil
	default:
		return model.MagUnknown, model.NewError(model.ErrUnknownStatus, nil)
	}
}

// DecodeSerialMagStatus re-encodes the raw IMU payload as base64, the way
// the dongle firmware itself derives magnetometer quality, and maps the
// character five from the end to a MagStatus grade. The second return value
// reports whether the frame carries a magnetometer reading at all: a
// base64 encoding ending in "==" means it doesn't.
func DecodeSerialMagStatus(rawPayload []byte) (model.MagStatus, bool, error) {
	encoded := base64.StdEncoding.EncodeToString(rawPayload)
	if strings.HasSuffix(encoded, "==") {
		return model.MagUnknown, false, nil
	}
	if len(encoded) < 5 {
		return model.MagUnknown, false, model.NewError(model.ErrDecodeFailed, nil)
	}
	switch encoded[len(encoded)-5] {
	case 'A':
		return model.MagVeryBad, true, nil
	case 'B':
		return model.MagBad, true, nil
	case 'C':
		return model.MagOkay, true, nil
	case 'D':
		return model.MagGreat, true, nil
	default:
		return model.MagUnknown, true, model.NewError(model.ErrUnknownStatus, nil)
	}
}
