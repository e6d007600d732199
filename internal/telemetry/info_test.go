package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haritora-bridge/slimetora/internal/model"
)

func TestDecodeSerialInfo(t *testing.T) {
	payload := []byte(`{"version":"1.2.3","model":"MC3S","serial no":"HX-001","comm":"BLE","comm_next":"BLE"}`)
	data, trackerType, hasType, err := DecodeSerialInfo(payload)
	require.NoError(t, err)
	require.True(t, hasType)
	assert.Equal(t, model.Wireless, trackerType)
	assert.Equal(t, "1.2.3", data.Version)
	assert.Equal(t, "HX-001", data.SerialNumber)
}

func TestDecodeSerialInfo_UnknownModelCode(t *testing.T) {
	payload := []byte(`{"version":"1.2.3","model":"ZZZZ","serial no":"HX-002"}`)
	_, _, hasType, err := DecodeSerialInfo(payload)
	require.NoError(t, err)
	assert.False(t, hasType)
}

func TestDecodeSerialInfo_SentinelSerialRejected(t *testing.T) {
	payload := []byte(`{"version":"1.2.3","model":"MC3S","serial no":"A00000"}`)
	_, _, _, err := DecodeSerialInfo(payload)
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrNotFound, kind)
}

func TestDecodeSerialInfo_MalformedJSON(t *testing.T) {
	_, _, _, err := DecodeSerialInfo([]byte(`{`))
	assert.Error(t, err)
}
