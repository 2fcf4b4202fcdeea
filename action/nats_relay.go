package action

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSRelay forwards a Bus's traffic to a NATS subject. It is opt-in:
// nothing on the bus hot path talks to NATS unless a relay has been
// explicitly attached, and every publish happens off a goroutine so a
// slow or unreachable NATS server never stalls a dispatch.
type NATSRelay struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

// NATSRelayOption configures a NATSRelay at construction time.
type NATSRelayOption func(*NATSRelay)

// WithNATSRelayLogger overrides the relay's logger (default: a no-op).
func WithNATSRelayLogger(logger *zap.Logger) NATSRelayOption {
	return func(r *NATSRelay) { r.logger = logger }
}

// NewNATSRelay connects to url and returns a relay that publishes to
// subject. The caller decides whether to Attach it to a Bus at all.
func NewNATSRelay(url, subject string, opts ...NATSRelayOption) (*NATSRelay, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	r := &NATSRelay{conn: conn, subject: subject, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Attach subscribes to every action on bus and relays each one to NATS
// as JSON, fire-and-forget. The returned Subscription stops the relay.
func (r *NATSRelay) Attach(bus Bus) Subscription {
	return bus.SubscribeAny(func(act any) error {
		go r.publish(act)
		return nil
	})
}

func (r *NATSRelay) publish(act any) {
	data, err := json.Marshal(act)
	if err != nil {
		r.logger.Warn("nats relay: failed to marshal action", zap.Error(err))
		return
	}
	if err := r.conn.Publish(r.subject, data); err != nil {
		r.logger.Warn("nats relay: publish failed", zap.String("subject", r.subject), zap.Error(err))
	}
}

// Close drains and closes the underlying NATS connection.
func (r *NATSRelay) Close() error {
	return r.conn.Drain()
}
