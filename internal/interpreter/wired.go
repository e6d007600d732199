package interpreter

import "github.com/haritora-bridge/slimetora/internal/model"

// Wired interprets the original HaritoraX Wired's frames. It carries no
// ankle-motion extra.
type Wired struct{ base }

// NewWired returns an Interpreter for the Wired model.
func NewWired() *Wired {
	return &Wired{base: base{trackerType: model.Wired, hasAnkle: false}}
}

func (w *Wired) ParseBLE(ctx *Context, deviceID, charName string, payload []byte) error {
	return w.base.parseBLE(ctx, deviceID, charName, payload)
}

func (w *Wired) ParseSerial(ctx *Context, trackerName, assignment, identifier, payload string) error {
	return w.base.parseSerial(ctx, trackerName, assignment, identifier, payload)
}
