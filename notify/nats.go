package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// publisher is satisfied by *nats.Conn.
type publisher interface {
	PublishMsg(m *nats.Msg) error
}

// headerCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// NATSSender publishes events on a subject for downstream consumers.
type NATSSender struct {
	pub     publisher
	subject string
}

// NewNATSSender publishes on subject through nc.
func NewNATSSender(nc *nats.Conn, subject string) *NATSSender {
	return &NATSSender{pub: nc, subject: subject}
}

func (n *NATSSender) Name() string { return "nats" }

// Send serializes ev as JSON. Trace context from ctx is injected into the
// message headers.
func (n *NATSSender) Send(ctx context.Context, ev *Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("nats: marshal event: %w", err)
	}
	msg := &nats.Msg{Subject: n.subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	if err := n.pub.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats: publish %s: %w", n.subject, err)
	}
	return nil
}
