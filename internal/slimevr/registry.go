package slimevr

import (
	"context"
	"net"
	"strconv"
	"sync"

	"github.com/haritora-bridge/slimetora/internal/model"
)

// slot holds either nothing (key absent), a reservation (present, tracker
// nil — the "None" placeholder claimed by the first concurrent caller) or
// a fully initialized tracker.
type slot struct {
	tracker *EmulatedTracker
}

// Registry owns every emulated tracker for one bridge session: the socket,
// the name->slot map, and the process-wide cancellation token gating every
// tracker's status watcher.
type Registry struct {
	cfg     Config
	factory UDPSocketFactory

	mu     sync.Mutex
	slots  map[string]*slot
	socket UDPSocket
	addr   *net.UDPAddr

	cancel context.CancelFunc
	ctx    context.Context

	onStatusChange func(name, status string)
}

// NewRegistry builds a Registry using factory to obtain its UDP socket.
func NewRegistry(cfg Config, factory UDPSocketFactory) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		cfg:     cfg,
		factory: factory,
		slots:   make(map[string]*slot),
		cancel:  cancel,
		ctx:     ctx,
	}
}

// OnStatusChange registers a callback invoked whenever any tracker's
// lifecycle status changes, for logging by the host command surface.
func (r *Registry) OnStatusChange(fn func(name, status string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onStatusChange = fn
}

func (r *Registry) ensureSocket() error {
	if r.socket != nil {
		return nil
	}
	socket, err := r.factory.ListenUDP()
	if err != nil {
		return model.NewError(model.ErrEmulatorFailed, err)
	}
	addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(r.cfg.BroadcastAddr, strconv.Itoa(r.cfg.Port)))
	if err != nil {
		return model.NewError(model.ErrEmulatorFailed, err)
	}
	r.socket = socket
	r.addr = addr
	return nil
}

// EnsureTracker implements interpreter.Sink. It inserts the None
// placeholder under name before doing any blocking work so concurrent
// callers for the same name observe the reservation and skip duplicate
// creation, matching the at-most-once invariant.
func (r *Registry) EnsureTracker(name string, mac [6]byte, trackerType model.TrackerModel) (bool, error) {
	r.mu.Lock()
	if _, exists := r.slots[name]; exists {
		r.mu.Unlock()
		return false, nil
	}
	r.slots[name] = &slot{}
	if err := r.ensureSocket(); err != nil {
		delete(r.slots, name)
		r.mu.Unlock()
		return false, err
	}
	socket, addr := r.socket, r.addr
	r.mu.Unlock()

	tracker := newEmulatedTracker(name, mac, socket, addr)
	if err := tracker.init(r.cfg); err != nil {
		r.mu.Lock()
		delete(r.slots, name)
		r.mu.Unlock()
		return false, err
	}
	if err := tracker.addSensor(); err != nil {
		r.mu.Lock()
		delete(r.slots, name)
		r.mu.Unlock()
		return false, err
	}

	r.mu.Lock()
	r.slots[name] = &slot{tracker: tracker}
	cb := r.onStatusChange
	r.mu.Unlock()

	tracker.watchStatus(r.ctx, cb)
	return true, nil
}

func (r *Registry) lookup(name string) (*EmulatedTracker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[name]
	if !ok {
		return nil, model.NewError(model.ErrNotFound, nil)
	}
	if s.tracker == nil {
		return nil, model.NewError(model.ErrNotFound, nil)
	}
	return s.tracker, nil
}

// SendRotation implements interpreter.Sink.
func (r *Registry) SendRotation(name string, rotation model.Quaternion) error {
	t, err := r.lookup(name)
	if err != nil {
		return err
	}
	return t.sendRotation(rotation)
}

// SendAccel implements interpreter.Sink.
func (r *Registry) SendAccel(name string, accel model.Vector3) error {
	t, err := r.lookup(name)
	if err != nil {
		return err
	}
	return t.sendAccel(accel)
}

// SendBattery implements interpreter.Sink.
func (r *Registry) SendBattery(name string, data model.BatteryData) error {
	t, err := r.lookup(name)
	if err != nil {
		return err
	}
	var percent, voltage float32
	if data.RemainingPercent != nil {
		percent = float32(*data.RemainingPercent)
	}
	if data.VoltageMV != nil {
		voltage = float32(*data.VoltageMV) / 1000.0
	}
	return t.sendBattery(percent, voltage)
}

// SendUserAction forwards a button-induced user action to a tracker.
func (r *Registry) SendUserAction(name string, action byte) error {
	t, err := r.lookup(name)
	if err != nil {
		return err
	}
	return t.sendUserAction(action)
}

// RemoveTracker implements interpreter.Sink: deinitializes and forgets the
// named tracker.
func (r *Registry) RemoveTracker(name string) error {
	r.mu.Lock()
	s, ok := r.slots[name]
	delete(r.slots, name)
	r.mu.Unlock()

	if !ok {
		return model.NewError(model.ErrNotFound, nil)
	}
	if s.tracker != nil {
		s.tracker.deinit()
	}
	return nil
}

// StartHeartbeat ensures the always-present heartbeat tracker exists, used
// to detect SlimeVR server reachability.
func (r *Registry) StartHeartbeat() error {
	_, err := r.EnsureTracker(model.HeartbeatTrackerName, [6]byte{}, model.Wireless)
	return err
}

// ClearTrackers cancels the status-watcher token, deinitializes every
// tracker, and empties the registry.
func (r *Registry) ClearTrackers() {
	r.cancel()

	r.mu.Lock()
	slots := r.slots
	r.slots = make(map[string]*slot)
	socket := r.socket
	r.socket = nil
	r.mu.Unlock()

	for _, s := range slots {
		if s.tracker != nil {
			s.tracker.deinit()
		}
	}
	if socket != nil {
		_ = socket.Close()
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())
}
