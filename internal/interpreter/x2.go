package interpreter

import "github.com/haritora-bridge/slimetora/internal/model"

// X2 interprets HaritoraX2 frames. Like Wireless it carries a trailing
// ankle-motion extra on IMU frames.
type X2 struct{ base }

// NewX2 returns an Interpreter for the X2 model.
func NewX2() *X2 {
	return &X2{base: base{trackerType: model.X2, hasAnkle: true}}
}

func (x *X2) ParseBLE(ctx *Context, deviceID, charName string, payload []byte) error {
	return x.base.parseBLE(ctx, deviceID, charName, payload)
}

func (x *X2) ParseSerial(ctx *Context, trackerName, assignment, identifier, payload string) error {
	return x.base.parseSerial(ctx, trackerName, assignment, identifier, payload)
}
