package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"docugen-workers/internal/common/logger"
)

// natsConn is the part of *nats.Conn the publisher needs.
type natsConn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes events on a NATS subject.
type NATSPublisher struct {
	conn    natsConn
	subject string
}

// NewNATSPublisher connects to url. The connection retries in the background
// when the server is not yet reachable.
func NewNATSPublisher(url, subject string, log logger.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("docugen-workers"),
		nats.Timeout(2*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", map[string]interface{}{"error": err.Error()})
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", map[string]interface{}{"url": nc.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return newNATSPublisher(conn, subject), nil
}

func newNATSPublisher(conn natsConn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject}
}

func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := ev.Marshal()
	if err != nil {
		return fmt.Errorf("%w: encode event: %v", ErrNotificationFailed, err)
	}
	if err := p.conn.Publish(p.subject, body); err != nil {
		return fmt.Errorf("%w: nats publish: %v", ErrNotificationFailed, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("%w: nats flush: %v", ErrNotificationFailed, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
