// Package dongleconn implements the USB-serial dongle backend: opening
// ports at the HaritoraX fixed baud rate, running the handshake batch,
// resolving tracker identity/assignment from the responses, and routing
// recognized frames into the model interpreter registry.
package dongleconn

import (
	"sync"
	"time"

	"github.com/haritora-bridge/slimetora/internal/interpreter"
	"github.com/haritora-bridge/slimetora/internal/model"
	"github.com/haritora-bridge/slimetora/internal/serialmux"
)

const stopSettlePause = 100 * time.Millisecond

// OpenPortFunc opens a serial port at path with opts, returning a
// multiplexer. RealOpenPort is the production implementation; tests
// substitute one backed by serialmux.TestableSerialPort.
type OpenPortFunc func(path string, opts serialmux.PortOptions) (serialmux.SerialMuxInterface, error)

// RealOpenPort opens a real OS serial port.
func RealOpenPort(path string, opts serialmux.PortOptions) (serialmux.SerialMuxInterface, error) {
	return serialmux.NewRealSerialMux(path, opts)
}

// Backend manages every open dongle port for one bridge session.
type Backend struct {
	open OpenPortFunc
	opts serialmux.PortOptions

	mu       sync.Mutex
	ports    map[string]*port
	trackers *trackerRegistry
	registry *interpreter.Registry
	onLog    func(format string, args ...any)
}

// NewBackend builds a Backend that opens ports via open and routes
// resolved frames into registry.
func NewBackend(registry *interpreter.Registry, open OpenPortFunc) *Backend {
	return &Backend{
		open:     open,
		opts:     serialmux.PortOptions{BaudRate: 500000},
		ports:    make(map[string]*port),
		trackers: newTrackerRegistry(),
		registry: registry,
	}
}

// OnLog registers a callback for non-fatal per-line decode failures.
func (b *Backend) OnLog(fn func(format string, args ...any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onLog = fn
}

// OpenPort opens path, writes the handshake batch, and starts routing its
// lines. Reopening an already-open path fails with ErrAlreadyExists.
func (b *Backend) OpenPort(path string) error {
	b.mu.Lock()
	if _, exists := b.ports[path]; exists {
		b.mu.Unlock()
		return model.NewError(model.ErrAlreadyExists, nil)
	}
	open, opts, trackers, registry, onLog := b.open, b.opts, b.trackers, b.registry, b.onLog
	b.mu.Unlock()

	p, err := openPort(path, opts, open, trackers, registry, onLog)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.ports[path] = p
	b.mu.Unlock()
	return nil
}

// ClosePort stops and drops path.
func (b *Backend) ClosePort(path string) error {
	b.mu.Lock()
	p, ok := b.ports[path]
	delete(b.ports, path)
	b.mu.Unlock()
	if !ok {
		return model.NewError(model.ErrNotFound, nil)
	}
	p.stop()
	b.trackers.forgetPort(path)
	return nil
}

// Write sends a raw command line to an open port.
func (b *Backend) Write(path, command string) error {
	b.mu.Lock()
	p, ok := b.ports[path]
	b.mu.Unlock()
	if !ok {
		return model.NewError(model.ErrNotFound, nil)
	}
	return p.mux.SendCommand(command)
}

// Trackers returns every serial tracker slot discovered so far, resolved
// or not.
func (b *Backend) Trackers() []model.TrackerInfo {
	return b.trackers.snapshot()
}

// OpenPorts returns the paths of every currently open port.
func (b *Backend) OpenPorts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	paths := make([]string, 0, len(b.ports))
	for path := range b.ports {
		paths = append(paths, path)
	}
	return paths
}

// Stop closes every open port, joins their reader goroutines, clears all
// discovered tracker slots, and pauses briefly for the OS to release the
// underlying handles.
func (b *Backend) Stop() {
	b.mu.Lock()
	ports := b.ports
	b.ports = make(map[string]*port)
	b.mu.Unlock()

	var wg sync.WaitGroup
	for _, p := range ports {
		wg.Add(1)
		go func(p *port) {
			defer wg.Done()
			p.stop()
		}(p)
	}
	wg.Wait()

	time.Sleep(stopSettlePause)
	b.trackers.clear()
}
