package ingest

import (
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// NATSClient implements the MessageBus interface over core NATS. Live market
// data is ephemeral and the snapshot poller is the correctness backstop, so
// plain subscriptions are used rather than durable JetStream consumers.
type NATSClient struct {
	servers              string
	nc                   *nats.Conn
	mu                   sync.Mutex
	reconnectDelay       time.Duration
	maxReconnectAttempts int
}

// NewNATSClient creates a new NATS client
func NewNATSClient(servers string) *NATSClient {
	return &NATSClient{
		servers:              servers,
		reconnectDelay:       2 * time.Second,
		maxReconnectAttempts: 10,
	}
}

// Connect establishes a connection to the NATS server
func (c *NATSClient) Connect() error {
	opts := []nats.Option{
		nats.Name("bookline"),
		nats.MaxReconnects(c.maxReconnectAttempts),
		nats.ReconnectWait(c.reconnectDelay),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			fields := log.Fields{"error": err}
			if sub != nil {
				fields["subject"] = sub.Subject
			}
			log.WithFields(fields).Error("NATS async error")
		}),
	}

	nc, err := nats.Connect(c.servers, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	c.mu.Lock()
	c.nc = nc
	c.mu.Unlock()

	log.WithField("servers", c.servers).Info("Connected to NATS")
	return nil
}

// Subscribe registers a handler for messages on the specified subject and
// returns an unsubscribe function. NATS invokes handlers for one
// subscription serially, which preserves per-subject arrival order.
func (c *NATSClient) Subscribe(subject string, handler func(data []byte)) (func() error, error) {
	c.mu.Lock()
	nc := c.nc
	c.mu.Unlock()
	if nc == nil {
		return nil, fmt.Errorf("not connected to NATS")
	}

	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	log.WithField("subject", subject).Debug("Subscribed to NATS subject")
	return sub.Unsubscribe, nil
}

// IsConnected returns true if the client is connected to NATS
func (c *NATSClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nc != nil && c.nc.IsConnected()
}

// Close gracefully shuts down the NATS connection
func (c *NATSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nc != nil {
		c.nc.Close()
		c.nc = nil
		log.Info("NATS connection closed")
	}
}
