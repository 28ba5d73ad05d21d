package gateway

import (
	"encoding/json"

	"github.com/nats-io/nats.go"

	"snapcap/logger"
)

// NatsRelay bridges notification events between gateway instances. Each
// instance publishes events for recipients it cannot see locally and
// subscribes for its own delivery. Origin filtering prevents echo loops.
type NatsRelay struct {
	nc      *nats.Conn
	subject string
	gwID    string
	sub     *nats.Subscription
}

type relayEnvelope struct {
	Origin    string `json:"origin"`
	Recipient string `json:"recipient"`
	Event     *Event `json:"event"`
}

// NewNatsRelay connects and starts delivering foreign events into srv.
func NewNatsRelay(url, subject, gwID string, srv *Server) (*NatsRelay, error) {
	nc, err := nats.Connect(url,
		nats.Name("snapcap-gateway-"+gwID),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	r := &NatsRelay{nc: nc, subject: subject, gwID: gwID}

	r.sub, err = nc.Subscribe(subject, func(m *nats.Msg) {
		var env relayEnvelope
		if err := json.Unmarshal(m.Data, &env); err != nil {
			logger.Warnf("[relay] bad envelope: %v", err)
			return
		}
		if env.Origin == r.gwID || env.Event == nil {
			return
		}
		srv.DeliverLocal(env.Recipient, env.Event)
	})
	if err != nil {
		nc.Close()
		return nil, err
	}
	return r, nil
}

// Publish fans one event out to the other instances. Best effort: a
// disconnected recipient simply misses the live event.
func (r *NatsRelay) Publish(recipient string, ev *Event) {
	b, err := json.Marshal(relayEnvelope{Origin: r.gwID, Recipient: recipient, Event: ev})
	if err != nil {
		return
	}
	if err := r.nc.Publish(r.subject, b); err != nil {
		logger.Warnf("[relay] publish: %v", err)
	}
}

func (r *NatsRelay) Close() {
	if r.sub != nil {
		_ = r.sub.Unsubscribe()
	}
	r.nc.Close()
}
