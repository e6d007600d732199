package bleconn

import (
	"sync"
	"time"

	"github.com/haritora-bridge/slimetora/internal/model"
	"github.com/haritora-bridge/slimetora/internal/timeutil"
)

const stopSettlePause = 100 * time.Millisecond

// Config controls the timing of the scan/connect supervisor.
type Config struct {
	ScanTimeout       time.Duration
	RescanInterval    time.Duration
	ReconnectInterval time.Duration
}

// DefaultConfig matches the original desktop application's defaults.
func DefaultConfig() Config {
	return Config{
		ScanTimeout:       5 * time.Second,
		RescanInterval:    3500 * time.Millisecond,
		ReconnectInterval: 5 * time.Second,
	}
}

// NotifyFunc receives a characteristic notification for one device.
type NotifyFunc func(deviceID, charUUID string, payload []byte)

// ConnectFunc receives the resolved body part of a device right after its
// BodyPartAssignment characteristic is read on connect.
type ConnectFunc func(deviceID, bodyPart string)

// Backend scans for and maintains BLE connections to HaritoraX trackers,
// forwarding notifications and connect/disconnect events to the caller.
type Backend struct {
	scanner Scanner
	clock   timeutil.Clock
	cfg     Config

	onDisconnect func(mac string)
	onNotify     NotifyFunc
	onConnect    ConnectFunc

	mu          sync.Mutex
	scanning    bool
	connected   map[string]Peripheral
	cancelSuper func()
}

// NewBackend builds a Backend against scanner, driving its reconnect loop
// with clock and cfg's scan/rescan/reconnect timing.
func NewBackend(scanner Scanner, clock timeutil.Clock, cfg Config) *Backend {
	return &Backend{
		scanner:   scanner,
		clock:     clock,
		cfg:       cfg,
		connected: make(map[string]Peripheral),
	}
}

// OnNotify registers the callback invoked for every subscribed
// characteristic notification.
func (b *Backend) OnNotify(fn NotifyFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onNotify = fn
}

// OnDisconnect registers the callback invoked when the backend disconnects a
// device (DisconnectDevice, Stop, or a failed subscribe). A link lost at the
// radio stack is not detected and does not invoke it.
func (b *Backend) OnDisconnect(fn func(mac string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDisconnect = fn
}

// OnConnect registers the callback invoked once a device's
// BodyPartAssignment characteristic has been read right after connecting.
func (b *Backend) OnConnect(fn ConnectFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onConnect = fn
}

// Scan runs one bounded scan and returns every Haritora tracker
// discovered. Concurrent calls are rejected with ErrScanAlreadyRunning.
func (b *Backend) Scan() ([]model.TrackerDevice, error) {
	b.mu.Lock()
	if b.scanning {
		b.mu.Unlock()
		return nil, model.NewError(model.ErrScanAlreadyRunning, nil)
	}
	b.scanning = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.scanning = false
		b.mu.Unlock()
	}()

	if err := b.scanner.Enable(); err != nil {
		return nil, err
	}

	var found []model.TrackerDevice
	var mu sync.Mutex
	err := b.scanner.Scan(b.cfg.ScanTimeout, func(d model.TrackerDevice) {
		mu.Lock()
		defer mu.Unlock()
		found = append(found, d)
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// StartScan launches a scan in the background, invoking onFound for every
// discovered device, and returns immediately. A scan already running is
// reported synchronously as ErrScanAlreadyRunning.
func (b *Backend) StartScan(onFound func(model.TrackerDevice)) error {
	b.mu.Lock()
	if b.scanning {
		b.mu.Unlock()
		return model.NewError(model.ErrScanAlreadyRunning, nil)
	}
	b.scanning = true
	b.mu.Unlock()

	if err := b.scanner.Enable(); err != nil {
		b.mu.Lock()
		b.scanning = false
		b.mu.Unlock()
		return err
	}

	go func() {
		defer func() {
			b.mu.Lock()
			b.scanning = false
			b.mu.Unlock()
		}()
		_ = b.scanner.Scan(b.cfg.ScanTimeout, onFound)
	}()
	return nil
}

// StopScan ends a scan started by StartScan before its timeout elapses.
func (b *Backend) StopScan() error {
	return b.scanner.StopScan()
}

// StartConnections launches a supervisor goroutine that keeps every MAC in
// macAddresses connected: a rescan ticker periodically re-discovers
// advertisers and a reconnect ticker redials any MAC currently absent from
// the connected set. Calling StartConnections again replaces the running
// supervisor.
func (b *Backend) StartConnections(macAddresses []string) {
	b.mu.Lock()
	if b.cancelSuper != nil {
		b.cancelSuper()
	}
	stop := make(chan struct{})
	b.cancelSuper = sync.OnceFunc(func() { close(stop) })
	b.mu.Unlock()

	rescan := b.clock.NewTicker(b.cfg.RescanInterval)
	reconnect := b.clock.NewTicker(b.cfg.ReconnectInterval)

	go func() {
		defer rescan.Stop()
		defer reconnect.Stop()
		for {
			select {
			case <-stop:
				return
			case <-rescan.C():
				_, _ = b.Scan()
			case <-reconnect.C():
				b.reconnectMissing(macAddresses)
			}
		}
	}()
}

func (b *Backend) reconnectMissing(macAddresses []string) {
	for _, mac := range macAddresses {
		b.mu.Lock()
		_, ok := b.connected[mac]
		b.mu.Unlock()
		if ok {
			continue
		}
		b.connect(mac)
	}
}

func (b *Backend) connect(mac string) {
	peripheral, err := b.scanner.Connect(mac)
	if err != nil {
		return
	}

	b.mu.Lock()
	b.connected[mac] = peripheral
	notify := b.onNotify
	onConnect := b.onConnect
	b.mu.Unlock()

	if onConnect != nil {
		if raw, err := peripheral.ReadCharacteristic(ExpandUUID(BodyPartAssignmentUUID)); err == nil && len(raw) > 0 {
			if bodyPart, ok := model.BodyPartTable[raw[0]]; ok {
				onConnect(mac, bodyPart)
			}
		}
	}

	for _, c := range SubscribableCharacteristics() {
		charUUID := c.UUID
		err := peripheral.SubscribeCharacteristic(charUUID, func(payload []byte) {
			if notify != nil {
				notify(mac, charUUID, payload)
			}
		})
		if err != nil {
			b.disconnect(mac)
			return
		}
	}
}

func (b *Backend) disconnect(mac string) {
	b.mu.Lock()
	peripheral, ok := b.connected[mac]
	delete(b.connected, mac)
	cb := b.onDisconnect
	b.mu.Unlock()

	if !ok {
		return
	}
	_ = peripheral.Disconnect()
	if cb != nil {
		cb(mac)
	}
}

// Write sends data to charUUID on mac, either with or without response.
func (b *Backend) Write(mac, charUUID string, data []byte, withResponse bool) error {
	b.mu.Lock()
	peripheral, ok := b.connected[mac]
	b.mu.Unlock()
	if !ok {
		return model.NewError(model.ErrNotFound, nil)
	}
	return peripheral.WriteCharacteristic(ExpandUUID(charUUID), data, withResponse)
}

// Read returns the current value of charUUID on mac.
func (b *Backend) Read(mac, charUUID string) ([]byte, error) {
	b.mu.Lock()
	peripheral, ok := b.connected[mac]
	b.mu.Unlock()
	if !ok {
		return nil, model.NewError(model.ErrNotFound, nil)
	}
	return peripheral.ReadCharacteristic(ExpandUUID(charUUID))
}

// DisconnectDevice drops a single MAC, invoking the disconnect callback.
func (b *Backend) DisconnectDevice(mac string) error {
	b.mu.Lock()
	_, ok := b.connected[mac]
	b.mu.Unlock()
	if !ok {
		return model.NewError(model.ErrNotFound, nil)
	}
	b.disconnect(mac)
	return nil
}

// Stop cancels the connection supervisor, disconnects every connected
// device, and pauses briefly to let the adapter settle before the caller
// reuses it.
func (b *Backend) Stop() {
	b.mu.Lock()
	cancel := b.cancelSuper
	b.cancelSuper = nil
	macs := make([]string, 0, len(b.connected))
	for mac := range b.connected {
		macs = append(macs, mac)
	}
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, mac := range macs {
		b.disconnect(mac)
	}
	b.clock.Sleep(stopSettlePause)
}
