package bridge

import (
	"path/filepath"

	"github.com/haritora-bridge/slimetora/internal/dongleconn"
	"github.com/haritora-bridge/slimetora/internal/model"
)

// StartConnection begins routing the named model's frames: if modes
// includes "serial", every port in ports is opened (errors aggregated);
// if modes includes "ble", the connection supervisor is (re)started for
// macAddresses, replacing any supervisor already running.
func (s *Service) StartConnection(modelName string, modes []string, ports []string, macAddresses []string) error {
	trackerType, err := parseModel(modelName)
	if err != nil {
		return err
	}
	s.registry.StartInterpreting(trackerType)

	var errs []error
	for _, mode := range modes {
		switch mode {
		case "serial":
			for _, p := range ports {
				if err := s.serial.OpenPort(p); err != nil {
					errs = append(errs, err)
				}
			}
		case "ble":
			s.ble.StartConnections(macAddresses)
		}
	}
	return aggregateErrors(errs)
}

// StopConnection stops interpreting every named model and, for each mode
// requested, tears down that transport's active work entirely.
func (s *Service) StopConnection(modelNames []string, modes []string) error {
	var errs []error
	for _, name := range modelNames {
		trackerType, err := parseModel(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.registry.StopInterpreting(trackerType)
	}

	for _, mode := range modes {
		switch mode {
		case "serial":
			s.serial.Stop()
		case "ble":
			s.ble.Stop()
		}
	}
	return aggregateErrors(errs)
}

// CleanupConnections tears down both transports and removes every emulated
// tracker.
func (s *Service) CleanupConnections() error {
	s.ble.Stop()
	s.serial.Stop()
	s.trackers.ClearTrackers()
	return nil
}

// StartHeartbeat ensures the always-present heartbeat tracker exists.
func (s *Service) StartHeartbeat() error {
	return s.trackers.StartHeartbeat()
}

// StartBLEScanning begins a background scan, recording every discovered
// device in place of the devices recorded by earlier scans. A scan already
// in progress is reported as ErrScanAlreadyRunning.
func (s *Service) StartBLEScanning() error {
	s.mu.Lock()
	previous := s.discovered
	s.discovered = make(map[string]model.TrackerDevice)
	s.mu.Unlock()
	err := s.ble.StartScan(func(d model.TrackerDevice) {
		s.mu.Lock()
		s.discovered[d.MACAddress] = d
		s.mu.Unlock()
	})
	if err != nil {
		s.mu.Lock()
		s.discovered = previous
		s.mu.Unlock()
	}
	return err
}

// StopBLEScanning ends an in-progress scan before its timeout elapses.
func (s *Service) StopBLEScanning() error {
	return s.ble.StopScan()
}

// StopBLEConnections disconnects every connected BLE device without
// stopping the interpreter registry.
func (s *Service) StopBLEConnections() error {
	s.ble.Stop()
	return nil
}

// DisconnectDevice drops a single connected BLE device by MAC.
func (s *Service) DisconnectDevice(mac string) error {
	return s.ble.DisconnectDevice(mac)
}

// WriteBLE writes raw bytes to a characteristic on a connected BLE device.
// UUIDs accept both short (4-hex) and long forms.
func (s *Service) WriteBLE(mac, charUUID string, data []byte, withResponse bool) error {
	return s.ble.Write(mac, charUUID, data, withResponse)
}

// ReadBLE reads a characteristic's current value from a connected BLE
// device.
func (s *Service) ReadBLE(mac, charUUID string) ([]byte, error) {
	return s.ble.Read(mac, charUUID)
}

// WriteSerial writes a raw command line to an open serial port.
func (s *Service) WriteSerial(port, command string) error {
	return s.serial.Write(port, command)
}

// GetSerialPorts enumerates every serial port visible to the OS.
func (s *Service) GetSerialPorts() ([]dongleconn.PortInfo, error) {
	return dongleconn.ListPorts()
}

// FilterPorts retains only the ports whose USB identity matches a known
// HaritoraX dongle.
func (s *Service) FilterPorts(ports []dongleconn.PortInfo) []dongleconn.PortInfo {
	return dongleconn.FilterPorts(ports)
}

// GetTrackerID returns the serial-discovered TrackerInfo for name, if any
// has been resolved.
func (s *Service) GetTrackerID(name string) (model.TrackerInfo, bool) {
	for _, info := range s.serial.Trackers() {
		if info.SerialNumber == name {
			return info, true
		}
	}
	return model.TrackerInfo{}, false
}

// GetTrackerPort returns the serial port a named tracker was discovered
// on, if any.
func (s *Service) GetTrackerPort(name string) (string, bool) {
	info, ok := s.GetTrackerID(name)
	if !ok {
		return "", false
	}
	return info.Port, true
}

// OpenLogsFolder ensures the configured logs directory exists and returns
// its absolute path. Actually surfacing a file-explorer window is the
// host shell's job, not this headless service's.
func (s *Service) OpenLogsFolder() (string, error) {
	if err := s.fs.MkdirAll(s.logsDir, 0o755); err != nil {
		return "", model.NewError(model.ErrIOFailure, err)
	}
	abs, err := filepath.Abs(s.logsDir)
	if err != nil {
		return "", model.NewError(model.ErrIOFailure, err)
	}
	return abs, nil
}

// DiscoveredDevices returns every BLE device seen by the most recent scan.
func (s *Service) DiscoveredDevices() []model.TrackerDevice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TrackerDevice, 0, len(s.discovered))
	for _, d := range s.discovered {
		out = append(out, d)
	}
	return out
}
