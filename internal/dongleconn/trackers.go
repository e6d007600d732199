package dongleconn

import (
	"errors"
	"sync"

	"github.com/haritora-bridge/slimetora/internal/model"
)

var errInvalidHex = errors.New("dongleconn: invalid hex digit")

// trackerRegistry tracks the serial-discovered slots this process has seen,
// keyed by (port, port_id), accumulating the two handshake responses
// (model/serial from an `i` frame, body-part assignment from an `r` frame)
// needed before a slot's frames can be routed to an interpreter.
type trackerRegistry struct {
	mu    sync.Mutex
	infos map[model.TrackerInfoKey]*model.TrackerInfo
}

func newTrackerRegistry() *trackerRegistry {
	return &trackerRegistry{infos: make(map[model.TrackerInfoKey]*model.TrackerInfo)}
}

func (tr *trackerRegistry) registerInfo(port string, portID byte, serialNumber string, trackerType model.TrackerModel, hasType bool) {
	key := model.TrackerInfoKey{Port: port, PortID: portID}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	info, ok := tr.infos[key]
	if !ok {
		tr.infos[key] = &model.TrackerInfo{
			SerialNumber: serialNumber,
			Port:         port,
			PortID:       portID,
			TrackerType:  trackerType,
			HasType:      hasType,
		}
		return
	}
	info.SerialNumber = serialNumber
	info.TrackerType = trackerType
	info.HasType = hasType
}

// resolveAssignment records the body-part label for (port, port_id) the
// first time it is observed; later `r` frames for an already-assigned slot
// are left untouched since they carry button state, not assignment.
func (tr *trackerRegistry) resolveAssignment(port string, portID byte, nibble byte) {
	key := model.TrackerInfoKey{Port: port, PortID: portID}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	info, ok := tr.infos[key]
	if !ok || info.Assignment != "" {
		return
	}
	label, ok := model.BodyPartTable[nibble]
	if !ok {
		return
	}
	info.Assignment = label
}

func (tr *trackerRegistry) lookup(port string, portID byte) (model.TrackerInfo, bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	info, ok := tr.infos[model.TrackerInfoKey{Port: port, PortID: portID}]
	if !ok {
		return model.TrackerInfo{}, false
	}
	return *info, true
}

// ready reports whether (port, port_id) has both a resolved tracker type
// and a non-empty assignment, the precondition for routing its frames.
func (tr *trackerRegistry) ready(port string, portID byte) (model.TrackerInfo, bool) {
	info, ok := tr.lookup(port, portID)
	if !ok || !info.HasType || info.Assignment == "" {
		return model.TrackerInfo{}, false
	}
	return info, true
}

func (tr *trackerRegistry) snapshot() []model.TrackerInfo {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]model.TrackerInfo, 0, len(tr.infos))
	for _, info := range tr.infos {
		out = append(out, *info)
	}
	return out
}

func (tr *trackerRegistry) forgetPort(port string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for key := range tr.infos {
		if key.Port == port {
			delete(tr.infos, key)
		}
	}
}

func (tr *trackerRegistry) clear() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.infos = make(map[model.TrackerInfoKey]*model.TrackerInfo)
}
