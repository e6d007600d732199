package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haritora-bridge/slimetora/internal/model"
)

func TestBLEBatteryState_PairsLevelThenVoltage(t *testing.T) {
	var s BLEBatteryState

	_, ok := s.UpdateLevel(64)
	assert.False(t, ok, "level alone must not emit")

	data, ok := s.UpdateVoltage(3752)
	require.True(t, ok)
	require.NotNil(t, data.RemainingPercent)
	require.NotNil(t, data.VoltageMV)
	assert.Equal(t, uint8(64), *data.RemainingPercent)
	assert.Equal(t, uint16(3752), *data.VoltageMV)
	assert.Nil(t, data.Status)
}

func TestBLEBatteryState_PairsVoltageThenLevel(t *testing.T) {
	var s BLEBatteryState

	_, ok := s.UpdateVoltage(4100)
	assert.False(t, ok)

	data, ok := s.UpdateLevel(90)
	require.True(t, ok)
	assert.Equal(t, uint8(90), *data.RemainingPercent)
	assert.Equal(t, uint16(4100), *data.VoltageMV)
}

func TestBLEBatteryState_FlushResetsPendingPair(t *testing.T) {
	var s BLEBatteryState
	s.UpdateLevel(50)
	s.UpdateVoltage(3700)

	_, ok := s.UpdateLevel(51)
	assert.False(t, ok, "a fresh pair must accumulate before emitting again")
}

func TestUpdateChargeStatus_AlwaysEmitsStandalone(t *testing.T) {
	data, err := UpdateChargeStatus(1)
	require.NoError(t, err)
	require.NotNil(t, data.Status)
	assert.Equal(t, model.Charging, *data.Status)
	assert.Nil(t, data.RemainingPercent)
	assert.Nil(t, data.VoltageMV)
}

func TestUpdateChargeStatus_UnknownValue(t *testing.T) {
	_, err := UpdateChargeStatus(9)
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrUnknownStatus, kind)
}

func TestDecodeBatteryLevel(t *testing.T) {
	v, err := DecodeBatteryLevel([]byte{77})
	require.NoError(t, err)
	assert.Equal(t, uint8(77), v)

	_, err = DecodeBatteryLevel(nil)
	assert.Error(t, err)
}

func TestDecodeBatteryVoltage(t *testing.T) {
	v, err := DecodeBatteryVoltage([]byte{0x68, 0x0E}) // 3688 little-endian
	require.NoError(t, err)
	assert.Equal(t, uint16(3688), v)

	_, err = DecodeBatteryVoltage([]byte{0x01})
	assert.Error(t, err)
}

func TestDecodeSerialBattery(t *testing.T) {
	payload := []byte(`{"battery remaining":88,"battery voltage":3950,"charge status":"charging"}`)
	data, err := DecodeSerialBattery(payload)
	require.NoError(t, err)
	require.NotNil(t, data.RemainingPercent)
	require.NotNil(t, data.VoltageMV)
	require.NotNil(t, data.Status)
	assert.Equal(t, uint8(88), *data.RemainingPercent)
	assert.Equal(t, uint16(3950), *data.VoltageMV)
	assert.Equal(t, model.Charging, *data.Status)
}

func TestDecodeSerialBattery_UnknownStatus(t *testing.T) {
	payload := []byte(`{"battery remaining":10,"battery voltage":3300,"charge status":"exploding"}`)
	_, err := DecodeSerialBattery(payload)
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrUnknownStatus, kind)
}

func TestDecodeSerialBattery_MalformedJSON(t *testing.T) {
	_, err := DecodeSerialBattery([]byte(`not json`))
	assert.Error(t, err)
}
