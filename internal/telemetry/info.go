package telemetry

import (
	"encoding/json"

	"github.com/haritora-bridge/slimetora/internal/model"
)

// serialInfoFrame mirrors the JSON payload of a serial `i` frame.
type serialInfoFrame struct {
	Version       string `json:"version"`
	Model         string `json:"model"`
	SerialNumber  string `json:"serial no"`
	Communication string `json:"comm"`
	CommNext      string `json:"comm_next"`
}

// SentinelSerialNumber is the placeholder value the dongle reports for an
// empty tracker slot; it must be rejected rather than registered.
const SentinelSerialNumber = "A00000"

// DecodeSerialInfo parses a serial `i` frame's JSON payload into InfoData
// and the TrackerModel derived from its reported MC code.
func DecodeSerialInfo(payload []byte) (model.InfoData, model.TrackerModel, bool, error) {
	var frame serialInfoFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.InfoData{}, 0, false, model.NewError(model.ErrDecodeFailed, err)
	}

	if frame.SerialNumber == SentinelSerialNumber {
		return model.InfoData{}, 0, false, model.NewError(model.ErrNotFound, nil)
	}

	data := model.InfoData{
		Version:           frame.Version,
		Model:             frame.Model,
		SerialNumber:      frame.SerialNumber,
		Communication:     frame.Communication,
		CommunicationNext: frame.CommNext,
	}

	trackerType, hasType := model.ModelFromSerialCode(frame.Model)
	return data, trackerType, hasType, nil
}
