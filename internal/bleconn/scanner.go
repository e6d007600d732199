package bleconn

import (
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/haritora-bridge/slimetora/internal/model"
)

// Scanner abstracts the subset of tinygo.org/x/bluetooth.Adapter this
// backend depends on, so the supervisor can be tested without a real
// Bluetooth radio.
type Scanner interface {
	Enable() error
	Scan(timeout time.Duration, onResult func(model.TrackerDevice)) error
	StopScan() error
	Connect(mac string) (Peripheral, error)
}

// Peripheral abstracts a connected device: reading/writing/subscribing to
// characteristics and disconnecting.
type Peripheral interface {
	ReadCharacteristic(uuid string) ([]byte, error)
	WriteCharacteristic(uuid string, data []byte, withResponse bool) error
	SubscribeCharacteristic(uuid string, onNotify func([]byte)) error
	Disconnect() error
}

// RealScanner wraps a tinygo.org/x/bluetooth.Adapter.
type RealScanner struct {
	adapter *bluetooth.Adapter
}

// NewRealScanner wraps adapter (typically bluetooth.DefaultAdapter).
func NewRealScanner(adapter *bluetooth.Adapter) *RealScanner {
	return &RealScanner{adapter: adapter}
}

// Enable powers on the adapter if necessary.
func (s *RealScanner) Enable() error {
	if err := s.adapter.Enable(); err != nil {
		return model.NewError(model.ErrNoAdapter, err)
	}
	return nil
}

// Scan runs a bounded scan, invoking onResult for every Haritora
// advertiser discovered before timeout elapses.
func (s *RealScanner) Scan(timeout time.Duration, onResult func(model.TrackerDevice)) error {
	done := make(chan struct{})
	timer := time.AfterFunc(timeout, func() {
		_ = s.adapter.StopScan()
	})
	defer timer.Stop()

	err := s.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		select {
		case <-done:
			return
		default:
		}

		name := result.LocalName()
		if !isHaritoraAdvertiser(name, result) {
			return
		}

		rssi := result.RSSI
		device := model.TrackerDevice{
			DeviceName: name,
			MACAddress: result.Address.String(),
			RSSI:       &rssi,
		}
		if hint, ok := model.ModelFromBLEName(name); ok {
			device.TrackerType = &hint
		}
		onResult(device)
	})
	close(done)
	if err != nil {
		return model.NewError(model.ErrConnectFailed, err)
	}
	return nil
}

// StopScan ends an in-progress Scan call early.
func (s *RealScanner) StopScan() error {
	if err := s.adapter.StopScan(); err != nil {
		return model.NewError(model.ErrConnectFailed, err)
	}
	return nil
}

func isHaritoraAdvertiser(name string, result bluetooth.ScanResult) bool {
	if _, ok := model.ModelFromBLEName(name); ok {
		return true
	}
	for _, uuid := range result.AdvertisementPayload.ServiceUUIDs() {
		if ExpandUUID(uuid.String()) == ExpandUUID(SettingServiceUUID) {
			return true
		}
	}
	return false
}

// Connect dials mac and returns a Peripheral wrapping the resulting
// bluetooth.Device.
func (s *RealScanner) Connect(mac string) (Peripheral, error) {
	addr, err := bluetooth.ParseMAC(mac)
	if err != nil {
		return nil, model.NewError(model.ErrConnectFailed, err)
	}
	device, err := s.adapter.Connect(bluetooth.Address{MACAddress: bluetooth.MACAddress{MAC: addr}}, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, model.NewError(model.ErrConnectFailed, err)
	}
	return &realPeripheral{device: device}, nil
}

type realPeripheral struct {
	device bluetooth.Device
}

func (p *realPeripheral) findCharacteristic(uuid string) (bluetooth.DeviceCharacteristic, error) {
	services, err := p.device.DiscoverServices(nil)
	if err != nil {
		return bluetooth.DeviceCharacteristic{}, err
	}
	target := ExpandUUID(uuid)
	for _, svc := range services {
		chars, err := svc.DiscoverCharacteristics(nil)
		if err != nil {
			continue
		}
		for _, c := range chars {
			if ExpandUUID(c.UUID().String()) == target {
				return c, nil
			}
		}
	}
	return bluetooth.DeviceCharacteristic{}, model.NewError(model.ErrUnknownCharacteristic, nil)
}

func (p *realPeripheral) ReadCharacteristic(uuid string) ([]byte, error) {
	c, err := p.findCharacteristic(uuid)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 512)
	n, err := c.Read(buf)
	if err != nil {
		return nil, model.NewError(model.ErrReadFailed, err)
	}
	return buf[:n], nil
}

func (p *realPeripheral) WriteCharacteristic(uuid string, data []byte, withResponse bool) error {
	c, err := p.findCharacteristic(uuid)
	if err != nil {
		return err
	}
	if withResponse {
		_, err = c.Write(data)
	} else {
		_, err = c.WriteWithoutResponse(data)
	}
	if err != nil {
		return model.NewError(model.ErrWriteFailed, err)
	}
	return nil
}

func (p *realPeripheral) SubscribeCharacteristic(uuid string, onNotify func([]byte)) error {
	c, err := p.findCharacteristic(uuid)
	if err != nil {
		return err
	}
	if err := c.EnableNotifications(func(buf []byte) { onNotify(buf) }); err != nil {
		return model.NewError(model.ErrSubscribeFailed, err)
	}
	return nil
}

func (p *realPeripheral) Disconnect() error {
	return p.device.Disconnect()
}
