// Package bridge wires the transport backends, the model interpreter
// registry, and the SlimeVR emulator adapter behind the host command
// surface the desktop shell drives.
package bridge

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"tinygo.org/x/bluetooth"

	"github.com/haritora-bridge/slimetora/internal/bleconn"
	"github.com/haritora-bridge/slimetora/internal/dongleconn"
	"github.com/haritora-bridge/slimetora/internal/fsutil"
	"github.com/haritora-bridge/slimetora/internal/interpreter"
	"github.com/haritora-bridge/slimetora/internal/model"
	"github.com/haritora-bridge/slimetora/internal/slimevr"
	"github.com/haritora-bridge/slimetora/internal/telemetry"
	"github.com/haritora-bridge/slimetora/internal/timeutil"
)

// Config controls the emulator's broadcast destination and identity, the
// BLE scan/connect supervisor's timing, and where per-run logs are written.
type Config struct {
	SlimeVR slimevr.Config
	BLE     bleconn.Config
	LogsDir string
}

// DefaultConfig returns the configuration the desktop shell ships with.
func DefaultConfig(firmwareName string) Config {
	return Config{
		SlimeVR: slimevr.DefaultConfig(firmwareName),
		BLE:     bleconn.DefaultConfig(),
		LogsDir: "logs",
	}
}

// Service is the single entry point a host command surface (CLI, IPC
// bridge, GUI shell) drives. It owns every backend and forwards their
// frames into one emulated-tracker registry.
type Service struct {
	clock timeutil.Clock

	trackers *slimevr.Registry
	registry *interpreter.Registry
	ble      *bleconn.Backend
	serial   *dongleconn.Backend
	fs       fsutil.FileSystem
	logsDir  string

	events chan model.Event

	mu         sync.Mutex
	discovered map[string]model.TrackerDevice
}

// NewService builds a Service using a real UDP socket, a real Bluetooth
// adapter, and the real serial port opener. Use the package-level
// constructors individually (slimevr.NewRegistry, bleconn.NewBackend,
// dongleconn.NewBackend) to assemble a Service with test doubles instead.
func NewService(cfg Config) *Service {
	clock := timeutil.RealClock{}
	trackers := slimevr.NewRegistry(cfg.SlimeVR, slimevr.NewRealUDPSocketFactory())

	s := &Service{
		clock:      clock,
		trackers:   trackers,
		fs:         fsutil.OSFileSystem{},
		logsDir:    cfg.LogsDir,
		events:     make(chan model.Event, 256),
		discovered: make(map[string]model.TrackerDevice),
	}

	buttons := telemetry.NewButtonTracker(clock)
	s.registry = interpreter.NewRegistry(trackers, s.emit, buttons)
	s.ble = bleconn.NewBackend(bleconn.NewRealScanner(bluetooth.DefaultAdapter), clock, cfg.BLE)
	s.ble.OnNotify(s.handleBLENotify)
	s.ble.OnConnect(s.handleBLEConnect)
	s.serial = dongleconn.NewBackend(s.registry, dongleconn.RealOpenPort)

	return s
}

// NewTestService builds a Service over injected backends, for tests that
// need to drive the command surface without real hardware.
func NewTestService(clock timeutil.Clock, trackers *slimevr.Registry, ble *bleconn.Backend, serial *dongleconn.Backend) *Service {
	s := &Service{
		clock:      clock,
		trackers:   trackers,
		fs:         fsutil.NewMemoryFileSystem(),
		logsDir:    "logs",
		events:     make(chan model.Event, 256),
		discovered: make(map[string]model.TrackerDevice),
	}
	buttons := telemetry.NewButtonTracker(clock)
	s.registry = interpreter.NewRegistry(trackers, s.emit, buttons)
	s.ble = ble
	s.ble.OnNotify(s.handleBLENotify)
	s.ble.OnConnect(s.handleBLEConnect)
	if serial != nil {
		s.serial = serial
	} else {
		s.serial = dongleconn.NewBackend(s.registry, dongleconn.RealOpenPort)
	}
	return s
}

// Events returns the channel every normalized telemetry/lifecycle event is
// published on.
func (s *Service) Events() <-chan model.Event {
	return s.events
}

func (s *Service) emit(evt model.Event) {
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	select {
	case s.events <- evt:
	default:
	}
}

func (s *Service) handleBLENotify(deviceID, charUUID string, payload []byte) {
	name, ok := bleconn.CharacteristicName(charUUID)
	if !ok {
		return
	}
	_ = s.registry.ProcessBLE(deviceID, name, payload)
}

func (s *Service) handleBLEConnect(deviceID, bodyPart string) {
	s.emit(model.Event{
		Tracker:        deviceID,
		ConnectionMode: model.Bluetooth,
		Kind:           model.EventConnect,
		Data:           model.TrackerInfo{Assignment: bodyPart},
	})
}

func parseModel(name string) (model.TrackerModel, error) {
	switch strings.ToLower(name) {
	case "wired":
		return model.Wired, nil
	case "wireless":
		return model.Wireless, nil
	case "x2":
		return model.X2, nil
	default:
		return 0, model.NewError(model.ErrDecodeFailed, fmt.Errorf("unknown tracker model %q", name))
	}
}

// aggregateErrors combines every non-nil error into one string-carrying
// error, matching the command surface's policy of attempting every
// sub-task before reporting failure.
func aggregateErrors(errs []error) error {
	var msgs []string
	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return model.NewError(model.ErrConnectFailed, fmt.Errorf("%s", strings.Join(msgs, "; ")))
}
