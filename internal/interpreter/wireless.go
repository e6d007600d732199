package interpreter

import "github.com/haritora-bridge/slimetora/internal/model"

// Wireless interprets HaritoraX Wireless frames. It carries a trailing
// ankle-motion extra on IMU frames.
type Wireless struct{ base }

// NewWireless returns an Interpreter for the Wireless model.
func NewWireless() *Wireless {
	return &Wireless{base: base{trackerType: model.Wireless, hasAnkle: true}}
}

func (w *Wireless) ParseBLE(ctx *Context, deviceID, charName string, payload []byte) error {
	return w.base.parseBLE(ctx, deviceID, charName, payload)
}

func (w *Wireless) ParseSerial(ctx *Context, trackerName, assignment, identifier, payload string) error {
	return w.base.parseSerial(ctx, trackerName, assignment, identifier, payload)
}
