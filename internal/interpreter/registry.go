package interpreter

import (
	"hash/fnv"
	"sync"

	"github.com/haritora-bridge/slimetora/internal/model"
	"github.com/haritora-bridge/slimetora/internal/telemetry"
)

// Registry dispatches incoming frames to the interpreter for the hinted or
// active tracker model. BLE frames follow the original desktop app's
// process_ble fallback chain: try the name-hinted model first, then each
// active model in the order it was started, stopping at the first
// interpreter that accepts the frame. Serial frames route directly to the
// interpreter for the port's tracker type.
type Registry struct {
	mu         sync.Mutex
	interps    map[model.TrackerModel]Interpreter
	active     []model.TrackerModel
	ctx        *Context
}

// NewRegistry builds a Registry wired to sink and emit, with wired,
// wireless and x2 interpreters pre-registered.
func NewRegistry(sink Sink, emit func(model.Event), buttons *telemetry.ButtonTracker) *Registry {
	return &Registry{
		interps: map[model.TrackerModel]Interpreter{
			model.Wired:    NewWired(),
			model.Wireless: NewWireless(),
			model.X2:       NewX2(),
		},
		ctx: &Context{Sink: sink, Emit: emit, Buttons: buttons, Battery: telemetry.NewBLEBatteryTracker()},
	}
}

// StartInterpreting adds model to the active set if not already present.
func (r *Registry) StartInterpreting(m model.TrackerModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, active := range r.active {
		if active == m {
			return
		}
	}
	r.active = append(r.active, m)
}

// StopInterpreting removes model from the active set.
func (r *Registry) StopInterpreting(m model.TrackerModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, active := range r.active {
		if active == m {
			r.active = append(r.active[:i], r.active[i+1:]...)
			return
		}
	}
}

func (r *Registry) activeSnapshot() []model.TrackerModel {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.TrackerModel, len(r.active))
	copy(out, r.active)
	return out
}

// ProcessBLE dispatches a BLE notification, trying the model hinted by
// deviceID's advertised-name prefix first, then falling back to every
// active model in registration order.
func (r *Registry) ProcessBLE(deviceID, charName string, payload []byte) error {
	if hint, ok := model.ModelFromBLEName(deviceID); ok {
		if interp, ok := r.interps[hint]; ok {
			if err := interp.ParseBLE(r.ctx, deviceID, charName, payload); err == nil {
				return nil
			}
		}
	}

	active := r.activeSnapshot()
	if len(active) == 0 {
		return model.NewError(model.ErrNoInterpreter, nil)
	}
	for _, m := range active {
		interp, ok := r.interps[m]
		if !ok {
			continue
		}
		if err := interp.ParseBLE(r.ctx, deviceID, charName, payload); err == nil {
			return nil
		}
	}
	return model.NewError(model.ErrNoInterpreter, nil)
}

// ProcessSerial dispatches a serial line already split into
// identifier/payload to the interpreter for trackerType, the model the
// dongle handshake resolved for this port. Unlike ProcessBLE, the model is
// never ambiguous here, so there is no name-hint/active-set fallback chain
// to try: the frame routes to trackerType's interpreter if that model is
// active, or NoInterpreter otherwise.
func (r *Registry) ProcessSerial(trackerName, assignment string, trackerType model.TrackerModel, identifier, payload string) error {
	active := r.activeSnapshot()
	isActive := false
	for _, m := range active {
		if m == trackerType {
			isActive = true
			break
		}
	}
	if !isActive {
		return model.NewError(model.ErrNoInterpreter, nil)
	}

	interp, ok := r.interps[trackerType]
	if !ok {
		return model.NewError(model.ErrNoInterpreter, nil)
	}
	return interp.ParseSerial(r.ctx, trackerName, assignment, identifier, payload)
}

// SeedMAC derives the 6-byte identity SlimeVR keys a tracker by. The
// Wireless model uses the fixed placeholder byte 0x01 in the last
// position (no serial number is available over BLE); Wired and X2 hash
// the dongle-reported serial number into the trailing bytes so repeat
// connections from the same physical tracker keep a stable identity.
func SeedMAC(trackerType model.TrackerModel, serialNumber string) [6]byte {
	var mac [6]byte
	if trackerType == model.Wireless || serialNumber == "" {
		mac[5] = 0x01
		return mac
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(serialNumber))
	sum := h.Sum32()
	mac[2] = byte(sum >> 24)
	mac[3] = byte(sum >> 16)
	mac[4] = byte(sum >> 8)
	mac[5] = byte(sum)
	return mac
}

// EnsureConnected runs the first-IMU-frame sequence: create the emulated
// tracker if it does not exist yet, and emit a connect event exactly once.
func EnsureConnected(ctx *Context, name string, mac [6]byte, trackerType model.TrackerModel, connMode model.ConnectionMode) error {
	created, err := ctx.Sink.EnsureTracker(name, mac, trackerType)
	if err != nil {
		return err
	}
	if created && ctx.Emit != nil {
		ctx.Emit(model.Event{
			Tracker:        name,
			ConnectionMode: connMode,
			TrackerType:    trackerType,
			Kind:           model.EventConnect,
		})
	}
	return nil
}
