package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSerialSettings(t *testing.T) {
	// idx:      0123456789012
	// chars:    xxxx1 1  xxx6 xx1
	payload := "xxxx11xxx6xx1"
	data, err := DecodeSerialSettings(payload)
	require.NoError(t, err)
	assert.Equal(t, 100, data.FPSMode)
	assert.Equal(t, 1, data.SensorMode)
	assert.True(t, data.AutoAccel)
	assert.True(t, data.AutoGyro)
	assert.False(t, data.AutoMag)
	assert.True(t, data.AnkleEnabled)
}

func TestDecodeSerialSettings_FPS50AndNoAnkle(t *testing.T) {
	payload := "xxxx02xxx0xx0"
	data, err := DecodeSerialSettings(payload)
	require.NoError(t, err)
	assert.Equal(t, 50, data.FPSMode)
	assert.Equal(t, 1, data.SensorMode)
	assert.False(t, data.AutoAccel)
	assert.False(t, data.AutoGyro)
	assert.False(t, data.AutoMag)
	assert.False(t, data.AnkleEnabled)
}

func TestDecodeSerialSettings_TooShort(t *testing.T) {
	_, err := DecodeSerialSettings("short")
	assert.Error(t, err)
}

func TestDecodeSerialSettings_SensorModeNonzeroMeansOne(t *testing.T) {
	payload := "xxxx19xxx0xx0"
	data, err := DecodeSerialSettings(payload)
	require.NoError(t, err)
	assert.Equal(t, 1, data.SensorMode)
}
