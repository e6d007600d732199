package bleconn

import (
	"sync"
	"time"

	"github.com/haritora-bridge/slimetora/internal/model"
)

// MockScanner is a test double for Scanner.
type MockScanner struct {
	mu sync.Mutex

	EnableErr error
	ScanErr   error
	ScanResults []model.TrackerDevice

	ConnectErr   error
	Peripherals  map[string]*MockPeripheral
	ConnectCalls []string
	ScanCalls    int
	StopScanErr  error
	StopScanCalls int
}

// NewMockScanner builds an empty MockScanner.
func NewMockScanner() *MockScanner {
	return &MockScanner{Peripherals: make(map[string]*MockPeripheral)}
}

// Enable implements Scanner.
func (m *MockScanner) Enable() error {
	return m.EnableErr
}

// Scan implements Scanner, synchronously replaying ScanResults.
func (m *MockScanner) Scan(timeout time.Duration, onResult func(model.TrackerDevice)) error {
	m.mu.Lock()
	m.ScanCalls++
	err := m.ScanErr
	results := m.ScanResults
	m.mu.Unlock()

	if err != nil {
		return err
	}
	for _, r := range results {
		onResult(r)
	}
	return nil
}

// StopScan implements Scanner.
func (m *MockScanner) StopScan() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StopScanCalls++
	return m.StopScanErr
}

// Connect implements Scanner.
func (m *MockScanner) Connect(mac string) (Peripheral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConnectCalls = append(m.ConnectCalls, mac)
	if m.ConnectErr != nil {
		return nil, m.ConnectErr
	}
	p, ok := m.Peripherals[mac]
	if !ok {
		p = NewMockPeripheral()
		m.Peripherals[mac] = p
	}
	return p, nil
}

// MockPeripheral is a test double for Peripheral.
type MockPeripheral struct {
	mu sync.Mutex

	ReadValues  map[string][]byte
	ReadErr     error
	WriteErr    error
	SubscribeErr error

	Writes      []MockWrite
	Subscribers map[string]func([]byte)
	Disconnected bool
}

// MockWrite records one WriteCharacteristic call.
type MockWrite struct {
	UUID         string
	Data         []byte
	WithResponse bool
}

// NewMockPeripheral builds an empty MockPeripheral.
func NewMockPeripheral() *MockPeripheral {
	return &MockPeripheral{
		ReadValues:  make(map[string][]byte),
		Subscribers: make(map[string]func([]byte)),
	}
}

// ReadCharacteristic implements Peripheral.
func (p *MockPeripheral) ReadCharacteristic(uuid string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ReadErr != nil {
		return nil, p.ReadErr
	}
	return p.ReadValues[ExpandUUID(uuid)], nil
}

// WriteCharacteristic implements Peripheral.
func (p *MockPeripheral) WriteCharacteristic(uuid string, data []byte, withResponse bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.WriteErr != nil {
		return p.WriteErr
	}
	p.Writes = append(p.Writes, MockWrite{UUID: uuid, Data: data, WithResponse: withResponse})
	return nil
}

// SubscribeCharacteristic implements Peripheral.
func (p *MockPeripheral) SubscribeCharacteristic(uuid string, onNotify func([]byte)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SubscribeErr != nil {
		return p.SubscribeErr
	}
	p.Subscribers[ExpandUUID(uuid)] = onNotify
	return nil
}

// Notify invokes the registered subscriber for uuid, if any.
func (p *MockPeripheral) Notify(uuid string, payload []byte) {
	p.mu.Lock()
	fn := p.Subscribers[ExpandUUID(uuid)]
	p.mu.Unlock()
	if fn != nil {
		fn(payload)
	}
}

// Disconnect implements Peripheral.
func (p *MockPeripheral) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Disconnected = true
	return nil
}
