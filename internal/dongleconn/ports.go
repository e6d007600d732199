package dongleconn

import (
	"strconv"

	"go.bug.st/serial/enumerator"

	"github.com/haritora-bridge/slimetora/internal/model"
)

// PortInfo describes one OS-visible serial port, with USB identity when
// the port exposes one.
type PortInfo struct {
	Name  string
	IsUSB bool
	VID   uint16
	PID   uint16
}

// ListPorts enumerates every serial port visible to the OS.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, model.NewError(model.ErrConnectFailed, err)
	}

	out := make([]PortInfo, 0, len(details))
	for _, d := range details {
		info := PortInfo{Name: d.Name, IsUSB: d.IsUSB}
		if d.IsUSB {
			if vid, err := strconv.ParseUint(d.VID, 16, 16); err == nil {
				info.VID = uint16(vid)
			}
			if pid, err := strconv.ParseUint(d.PID, 16, 16); err == nil {
				info.PID = uint16(pid)
			}
		}
		out = append(out, info)
	}
	return out, nil
}

// FilterPorts retains only the ports whose USB VID/PID matches a known
// HaritoraX dongle.
func FilterPorts(ports []PortInfo) []PortInfo {
	var out []PortInfo
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		for _, known := range model.KnownDongles {
			if p.VID == known.VendorID && p.PID == known.ProductID {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
