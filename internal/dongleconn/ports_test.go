package dongleconn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterPorts_KeepsOnlyKnownDongles(t *testing.T) {
	ports := []PortInfo{
		{Name: "COM3", IsUSB: true, VID: 0x1915, PID: 0x520F},  // GX2
		{Name: "COM4", IsUSB: true, VID: 0x04DA, PID: 0x3F18},  // GX6
		{Name: "COM5", IsUSB: true, VID: 0xDEAD, PID: 0xBEEF},  // unknown
		{Name: "COM6", IsUSB: false},
	}

	filtered := FilterPorts(ports)
	require := assert.New(t)
	require.Len(filtered, 2)
	names := []string{filtered[0].Name, filtered[1].Name}
	require.Contains(names, "COM3")
	require.Contains(names, "COM4")
}

func TestFilterPorts_EmptyInput(t *testing.T) {
	assert.Empty(t, FilterPorts(nil))
}
