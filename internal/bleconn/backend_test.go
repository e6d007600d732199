package bleconn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haritora-bridge/slimetora/internal/model"
	"github.com/haritora-bridge/slimetora/internal/timeutil"
)

func TestBackend_Scan_ReturnsDiscoveredDevices(t *testing.T) {
	scanner := NewMockScanner()
	scanner.ScanResults = []model.TrackerDevice{{DeviceName: "HaritoraXW-AA", MACAddress: "aa:bb:cc:dd:ee:ff"}}
	b := NewBackend(scanner, timeutil.NewMockClock(time.Unix(0, 0)), DefaultConfig())

	found, err := b.Scan()
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, "HaritoraXW-AA", found[0].DeviceName)
}

func TestBackend_Scan_PropagatesEnableError(t *testing.T) {
	scanner := NewMockScanner()
	scanner.EnableErr = model.NewError(model.ErrNoAdapter, nil)
	b := NewBackend(scanner, timeutil.NewMockClock(time.Unix(0, 0)), DefaultConfig())

	_, err := b.Scan()
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrNoAdapter, kind)
}

func TestBackend_Write_UnknownMAC(t *testing.T) {
	scanner := NewMockScanner()
	b := NewBackend(scanner, timeutil.NewMockClock(time.Unix(0, 0)), DefaultConfig())

	err := b.Write("ghost", "2a19", []byte{1}, false)
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrNotFound, kind)
}

func TestBackend_ConnectAndWriteRead(t *testing.T) {
	scanner := NewMockScanner()
	b := NewBackend(scanner, timeutil.NewMockClock(time.Unix(0, 0)), DefaultConfig())

	b.connect("aa:bb:cc:dd:ee:ff")
	require.NoError(t, b.Write("aa:bb:cc:dd:ee:ff", "2a19", []byte{42}, false))

	peripheral := scanner.Peripherals["aa:bb:cc:dd:ee:ff"]
	require.Len(t, peripheral.Writes, 1)
	assert.Equal(t, byte(42), peripheral.Writes[0].Data[0])
}

func TestBackend_Connect_ReadsBodyPartAndInvokesOnConnect(t *testing.T) {
	scanner := NewMockScanner()
	peripheral := NewMockPeripheral()
	peripheral.ReadValues[ExpandUUID(BodyPartAssignmentUUID)] = []byte{0x3}
	scanner.Peripherals["aa:bb:cc:dd:ee:ff"] = peripheral

	b := NewBackend(scanner, timeutil.NewMockClock(time.Unix(0, 0)), DefaultConfig())

	var gotMAC, gotBodyPart string
	b.OnConnect(func(deviceID, bodyPart string) {
		gotMAC, gotBodyPart = deviceID, bodyPart
	})

	b.connect("aa:bb:cc:dd:ee:ff")

	assert.Equal(t, "aa:bb:cc:dd:ee:ff", gotMAC)
	assert.Equal(t, model.BodyPartTable[0x3], gotBodyPart)
}

func TestBackend_DisconnectDevice_InvokesCallback(t *testing.T) {
	scanner := NewMockScanner()
	b := NewBackend(scanner, timeutil.NewMockClock(time.Unix(0, 0)), DefaultConfig())
	b.connect("aa:bb:cc:dd:ee:ff")

	var disconnected string
	b.OnDisconnect(func(mac string) { disconnected = mac })

	require.NoError(t, b.DisconnectDevice("aa:bb:cc:dd:ee:ff"))
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", disconnected)
	assert.True(t, scanner.Peripherals["aa:bb:cc:dd:ee:ff"].Disconnected)
}

func TestBackend_DisconnectDevice_NotFound(t *testing.T) {
	scanner := NewMockScanner()
	b := NewBackend(scanner, timeutil.NewMockClock(time.Unix(0, 0)), DefaultConfig())

	err := b.DisconnectDevice("ghost")
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrNotFound, kind)
}

func TestBackend_StartScan_ReportsAlreadyRunning(t *testing.T) {
	scanner := NewMockScanner()
	scanner.ScanResults = []model.TrackerDevice{{DeviceName: "HaritoraXW-AA", MACAddress: "aa:bb:cc:dd:ee:ff"}}
	b := NewBackend(scanner, timeutil.NewMockClock(time.Unix(0, 0)), DefaultConfig())

	b.mu.Lock()
	b.scanning = true
	b.mu.Unlock()

	err := b.StartScan(func(model.TrackerDevice) {})
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrScanAlreadyRunning, kind)
}

func TestBackend_StartScan_InvokesCallbackAsynchronously(t *testing.T) {
	scanner := NewMockScanner()
	scanner.ScanResults = []model.TrackerDevice{{DeviceName: "HaritoraXW-AA", MACAddress: "aa:bb:cc:dd:ee:ff"}}
	b := NewBackend(scanner, timeutil.NewMockClock(time.Unix(0, 0)), DefaultConfig())

	found := make(chan model.TrackerDevice, 1)
	require.NoError(t, b.StartScan(func(d model.TrackerDevice) { found <- d }))

	select {
	case d := <-found:
		assert.Equal(t, "aa:bb:cc:dd:ee:ff", d.MACAddress)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for scan callback")
	}
}

func TestBackend_StopScan_DelegatesToScanner(t *testing.T) {
	scanner := NewMockScanner()
	b := NewBackend(scanner, timeutil.NewMockClock(time.Unix(0, 0)), DefaultConfig())

	require.NoError(t, b.StopScan())
	assert.Equal(t, 1, scanner.StopScanCalls)
}

func TestBackend_StartConnections_ReconnectsMissingMAC(t *testing.T) {
	scanner := NewMockScanner()
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	b := NewBackend(scanner, clock, DefaultConfig())

	b.StartConnections([]string{"aa:bb:cc:dd:ee:ff"})
	clock.Advance(DefaultConfig().ReconnectInterval)
	time.Sleep(20 * time.Millisecond)

	b.mu.Lock()
	_, connected := b.connected["aa:bb:cc:dd:ee:ff"]
	b.mu.Unlock()
	assert.True(t, connected)

	b.Stop()
}

func TestBackend_StartConnections_RestartReplacesPreviousSupervisor(t *testing.T) {
	scanner := NewMockScanner()
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	b := NewBackend(scanner, clock, DefaultConfig())

	b.StartConnections([]string{"aa:bb:cc:dd:ee:ff"})
	b.StartConnections([]string{"11:22:33:44:55:66"})
	clock.Advance(DefaultConfig().ReconnectInterval)
	time.Sleep(20 * time.Millisecond)

	b.mu.Lock()
	_, oldConnected := b.connected["aa:bb:cc:dd:ee:ff"]
	_, newConnected := b.connected["11:22:33:44:55:66"]
	b.mu.Unlock()
	assert.False(t, oldConnected)
	assert.True(t, newConnected)

	b.Stop()
}

func TestBackend_Stop_DisconnectsAllAndSleeps(t *testing.T) {
	scanner := NewMockScanner()
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	b := NewBackend(scanner, clock, DefaultConfig())
	b.connect("aa:bb:cc:dd:ee:ff")

	b.Stop()

	assert.True(t, scanner.Peripherals["aa:bb:cc:dd:ee:ff"].Disconnected)
	assert.Contains(t, clock.Sleeps(), stopSettlePause)
}
