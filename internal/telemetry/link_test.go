package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSerialLinkQuality(t *testing.T) {
	link, err := DecodeSerialLinkQuality("c4d6000000")
	require.NoError(t, err)
	assert.False(t, link.Lost)
	assert.Equal(t, int8(-60), link.DongleRSSI)  // 0xc4 = 196 -> -60
	assert.Equal(t, int8(-42), link.TrackerRSSI) // 0xd6 = 214 -> -42
}

func TestDecodeSerialLinkQuality_LostSentinel(t *testing.T) {
	link, err := DecodeSerialLinkQuality("7f7f7f7f7f7f")
	require.NoError(t, err)
	assert.True(t, link.Lost)
}

func TestDecodeSerialLinkQuality_TooShort(t *testing.T) {
	_, err := DecodeSerialLinkQuality("c4")
	assert.Error(t, err)
}

func TestDecodeSerialLinkQuality_NonHex(t *testing.T) {
	_, err := DecodeSerialLinkQuality("zzzz00")
	assert.Error(t, err)
}
