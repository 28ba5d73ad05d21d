package gateway

import (
	"context"

	"github.com/pkg/errors"
)

// HandlerFunc processes one inbound frame for an authenticated connection.
type HandlerFunc func(ctx context.Context, s *Server, conn *WsConn, f *Frame) error

// Dispatcher is the single dispatch table for inbound frames.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

func (d *Dispatcher) Register(frameType string, h HandlerFunc) {
	d.handlers[frameType] = h
}

func (d *Dispatcher) Dispatch(ctx context.Context, s *Server, conn *WsConn, f *Frame) error {
	h, ok := d.handlers[f.Type]
	if !ok {
		return errors.Errorf("no handler for frame type=%s", f.Type)
	}
	return h(ctx, s, conn, f)
}
