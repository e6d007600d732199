package dongleconn

import (
	"context"
	"strings"

	"github.com/haritora-bridge/slimetora/internal/interpreter"
	"github.com/haritora-bridge/slimetora/internal/model"
	"github.com/haritora-bridge/slimetora/internal/serialmux"
	"github.com/haritora-bridge/slimetora/internal/telemetry"
)

// handshakeCommands is the fixed batch written once on open to solicit a
// dongle's model, serial number, and body-part assignment for every sensor
// slot it exposes.
var handshakeCommands = []string{
	"r0:", "r1:", "r:", "o:", "i:", "i0:", "i1:", "o0:", "o1:", "v0:", "v1:",
}

// port owns one open serial connection: the handshake batch written on
// open, and the dedicated goroutine pair reading and dispatching its
// lines (one draining the multiplexer's blocking Monitor loop, one
// consuming the resulting subscriber channel).
type port struct {
	path string
	mux  serialmux.SerialMuxInterface

	cancel      context.CancelFunc
	monitorDone chan struct{}
	readDone    chan struct{}
}

func openPort(path string, opts serialmux.PortOptions, open OpenPortFunc, trackers *trackerRegistry, registry *interpreter.Registry, onLog func(format string, args ...any)) (*port, error) {
	mux, err := open(path, opts)
	if err != nil {
		return nil, model.NewError(model.ErrConnectFailed, err)
	}

	for _, cmd := range handshakeCommands {
		if err := mux.SendCommand(cmd); err != nil {
			_ = mux.Close()
			return nil, model.NewError(model.ErrWriteFailed, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &port{
		path:        path,
		mux:         mux,
		cancel:      cancel,
		monitorDone: make(chan struct{}),
		readDone:    make(chan struct{}),
	}

	id, lines := mux.Subscribe()
	go func() {
		defer close(p.monitorDone)
		defer mux.Unsubscribe(id)
		_ = mux.Monitor(ctx)
	}()
	go func() {
		defer close(p.readDone)
		for line := range lines {
			p.handleLine(line, trackers, registry, onLog)
		}
	}()

	return p, nil
}

func (p *port) handleLine(line string, trackers *trackerRegistry, registry *interpreter.Registry, onLog func(format string, args ...any)) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return
	}
	identifier, payload := line[:idx], line[idx+1:]
	kind, portID := parseIdentifier(identifier)

	switch kind {
	case 'i':
		data, trackerType, hasType, err := telemetry.DecodeSerialInfo([]byte(payload))
		if err != nil {
			if onLog != nil {
				onLog("dongleconn: %s: dropping malformed info frame: %v", p.path, err)
			}
			return
		}
		trackers.registerInfo(p.path, portID, data.SerialNumber, trackerType, hasType)
		return
	case 'r':
		if len(payload) > 4 {
			if nibble, err := hexNibble(payload[4]); err == nil {
				trackers.resolveAssignment(p.path, portID, nibble)
			}
		}
	}

	info, ok := trackers.ready(p.path, portID)
	if !ok {
		return
	}
	if err := registry.ProcessSerial(info.SerialNumber, info.Assignment, info.TrackerType, string(kind), payload); err != nil {
		if onLog != nil {
			onLog("dongleconn: %s: %v", p.path, err)
		}
	}
}

// stop closes the underlying port (unblocking any in-flight read), cancels
// the monitor context, and waits for both goroutines to exit.
func (p *port) stop() {
	_ = p.mux.Close()
	p.cancel()
	<-p.monitorDone
	<-p.readDone
}
