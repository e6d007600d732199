package telemetry

import (
	"encoding/hex"

	"github.com/haritora-bridge/slimetora/internal/model"
)

// lostLinkSentinel is the payload the dongle reports when a tracker has
// dropped off the link entirely.
const lostLinkSentinel = "7f7f7f7f7f7f"

// DecodeSerialLinkQuality parses a serial `a` frame's 12-hex-character
// payload into dongle/tracker RSSI. Only the first 4 hex digits are
// documented to carry the pair of signed-8 RSSI values; the remainder of
// the payload is presently unused.
func DecodeSerialLinkQuality(payload string) (model.LinkQuality, error) {
	if len(payload) < 4 {
		return model.LinkQuality{}, model.NewError(model.ErrDecodeFailed, nil)
	}

	if payload == lostLinkSentinel {
		return model.LinkQuality{Lost: true}, nil
	}

	raw, err := hex.DecodeString(payload[:4])
	if err != nil {
		return model.LinkQuality{}, model.NewError(model.ErrDecodeFailed, err)
	}

	return model.LinkQuality{
		DongleRSSI:  int8(raw[0]),
		TrackerRSSI: int8(raw[1]),
	}, nil
}
