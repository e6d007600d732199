package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haritora-bridge/slimetora/internal/model"
)

func TestDecodeBLEMagStatus(t *testing.T) {
	tests := []struct {
		raw  byte
		want model.MagStatus
	}{
		{3, model.MagGreat},
		{2, model.MagOkay},
		{1, model.MagBad},
		{0, model.MagVeryBad},
	}
	for _, tt := range tests {
		got, err := DecodeBLEMagStatus([]byte{tt.raw})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := DecodeBLEMagStatus([]byte{9})
	assert.Error(t, err)

	_, err = DecodeBLEMagStatus(nil)
	assert.Error(t, err)
}

func TestDecodeSerialMagStatus(t *testing.T) {
	// Each raw payload's base64 encoding does not end in "==" and has the
	// named letter five characters from the end.
	tests := []struct {
		raw  []byte
		want model.MagStatus
	}{
		{[]byte{22, 226, 64, 174, 4}, model.MagVeryBad},     // base64 "FuJArgQ="
		{[]byte{213, 161, 1, 109, 7, 1}, model.MagBad},      // base64 "1aEBbQcB"
		{[]byte{210, 107, 2, 69, 250}, model.MagOkay},       // base64 "0msCRfo="
		{[]byte{229, 236, 3, 111, 152, 58}, model.MagGreat}, // base64 "5ewDb5g6"
	}
	for _, tt := range tests {
		got, ok, err := DecodeSerialMagStatus(tt.raw)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, tt.want, got)
	}

	// base64 "mk/Z8S/+" -- fifth-from-end character is 'Z', not a known grade.
	_, ok, err := DecodeSerialMagStatus([]byte{154, 79, 217, 241, 47, 254})
	assert.Error(t, err)
	assert.True(t, ok)
}

func TestDecodeSerialMagStatus_PaddedEncodingHasNoReading(t *testing.T) {
	// A single zero byte base64-encodes to "AA==", which ends in "==".
	_, ok, err := DecodeSerialMagStatus([]byte{0})
	require.NoError(t, err)
	assert.False(t, ok)
}
