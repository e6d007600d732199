package slimevr

import (
	"context"
	"math"
	"net"
	"sync"
	"sync/atomic"

	"github.com/haritora-bridge/slimetora/internal/model"
)

// Config controls where emulated trackers broadcast and under what
// firmware identity they present themselves.
type Config struct {
	BroadcastAddr       string
	Port                int
	FirmwareName        string
	UnreliableTransport bool
}

// DefaultConfig matches the original desktop application's defaults.
func DefaultConfig(firmwareName string) Config {
	return Config{
		BroadcastAddr: "255.255.255.255",
		Port:          6969,
		FirmwareName:  firmwareName,
	}
}

// trackerStatus mirrors the lifecycle states the Rust emulator's status
// watcher reported: creating, initialized, running, deinitialized.
type trackerStatus int

const (
	statusCreating trackerStatus = iota
	statusInitialized
	statusRunning
	statusDeinitialized
)

func (s trackerStatus) String() string {
	switch s {
	case statusCreating:
		return "creating"
	case statusInitialized:
		return "initialized"
	case statusRunning:
		return "running"
	case statusDeinitialized:
		return "deinitialized"
	default:
		return "unknown"
	}
}

// EmulatedTracker owns one SlimeVR virtual tracker: its UDP socket, packet
// counter, and single attached IMU sensor.
type EmulatedTracker struct {
	name    string
	mac     [6]byte
	socket  UDPSocket
	addr    *net.UDPAddr
	counter uint64

	mu     sync.Mutex
	status trackerStatus

	onStatusChange func(trackerStatus)
}

func newEmulatedTracker(name string, mac [6]byte, socket UDPSocket, addr *net.UDPAddr) *EmulatedTracker {
	return &EmulatedTracker{name: name, mac: mac, socket: socket, addr: addr, status: statusCreating}
}

func (t *EmulatedTracker) nextCounter() uint64 {
	return atomic.AddUint64(&t.counter, 1) - 1
}

func (t *EmulatedTracker) setStatus(s trackerStatus) {
	t.mu.Lock()
	t.status = s
	cb := t.onStatusChange
	t.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

// init sends the handshake and transitions the tracker to Initialized.
func (t *EmulatedTracker) init(cfg Config) error {
	pkt := encodeHandshake(t.nextCounter(), t.mac, cfg.FirmwareName)
	if _, err := t.socket.WriteToUDP(pkt, t.addr); err != nil {
		return model.NewError(model.ErrEmulatorFailed, err)
	}
	t.setStatus(statusInitialized)
	return nil
}

// addSensor announces the tracker's single IMU sensor and transitions to
// Running.
func (t *EmulatedTracker) addSensor() error {
	pkt := encodeSensorInfo(t.nextCounter(), 0)
	if _, err := t.socket.WriteToUDP(pkt, t.addr); err != nil {
		return model.NewError(model.ErrEmulatorFailed, err)
	}
	t.setStatus(statusRunning)
	return nil
}

// sendRotation normalizes q and transmits it for the tracker's sensor 0.
func (t *EmulatedTracker) sendRotation(q model.Quaternion) error {
	norm := normalize(q)
	pkt := encodeRotation(t.nextCounter(), 0, norm)
	_, err := t.socket.WriteToUDP(pkt, t.addr)
	if err != nil {
		return model.NewError(model.ErrEmulatorFailed, err)
	}
	return nil
}

func (t *EmulatedTracker) sendAccel(v model.Vector3) error {
	pkt := encodeAccel(t.nextCounter(), 0, v)
	if _, err := t.socket.WriteToUDP(pkt, t.addr); err != nil {
		return model.NewError(model.ErrEmulatorFailed, err)
	}
	return nil
}

func (t *EmulatedTracker) sendBattery(percent, voltage float32) error {
	pkt := encodeBattery(t.nextCounter(), percent, voltage)
	if _, err := t.socket.WriteToUDP(pkt, t.addr); err != nil {
		return model.NewError(model.ErrEmulatorFailed, err)
	}
	return nil
}

func (t *EmulatedTracker) sendUserAction(action byte) error {
	pkt := encodeUserAction(t.nextCounter(), action)
	if _, err := t.socket.WriteToUDP(pkt, t.addr); err != nil {
		return model.NewError(model.ErrEmulatorFailed, err)
	}
	return nil
}

func (t *EmulatedTracker) heartbeat() error {
	pkt := encodeHeartbeat(t.nextCounter())
	if _, err := t.socket.WriteToUDP(pkt, t.addr); err != nil {
		return model.NewError(model.ErrEmulatorFailed, err)
	}
	return nil
}

func (t *EmulatedTracker) deinit() {
	t.setStatus(statusDeinitialized)
}

// watchStatus spawns a goroutine that logs lifecycle transitions until ctx
// is cancelled, mirroring the original's per-tracker status subscription.
func (t *EmulatedTracker) watchStatus(ctx context.Context, onChange func(name string, status string)) {
	changes := make(chan trackerStatus, 8)
	t.mu.Lock()
	t.onStatusChange = func(s trackerStatus) {
		select {
		case changes <- s:
		default:
		}
	}
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-changes:
				if onChange != nil {
					onChange(t.name, s.String())
				}
			}
		}
	}()
}

func normalize(q model.Quaternion) model.Quaternion {
	mag := q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
	if mag == 0 {
		return model.Quaternion{W: 1}
	}
	root := math.Sqrt(mag)
	return model.Quaternion{X: q.X / root, Y: q.Y / root, Z: q.Z / root, W: q.W / root}
}
