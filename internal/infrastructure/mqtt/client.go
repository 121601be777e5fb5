package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-ephemeris/internal/infrastructure/config"
)

// Logger is the logging the client needs. logging.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MessageHandler receives messages of a subscription. A returned error is
// logged; it does not affect acknowledgement.
type MessageHandler func(topic string, payload []byte) error

type subscription struct {
	qos     byte
	handler MessageHandler
}

// Client is a paho client that reconnects on its own, restores its
// subscriptions after every reconnect and keeps the service status topic
// up to date.
//
// All methods are safe for concurrent use.
type Client struct {
	paho     pahomqtt.Client
	clientID string
	qos      byte

	connected atomic.Bool

	subMu         sync.RWMutex
	subscriptions map[string]subscription // by topic filter

	logMu  sync.RWMutex
	logger Logger
}

// Connect dials the broker and waits for the first connection.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		clientID:      cfg.Broker.ClientID,
		qos:           byte(cfg.QoS),
		subscriptions: make(map[string]subscription),
		logger:        noopLogger{},
	}

	opts := clientOptions(cfg)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.onConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.onConnectionLost(err) })

	c.paho = pahomqtt.NewClient(opts)
	token := c.paho.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: %s: timeout after %v", ErrConnectionFailed, brokerURL(cfg), connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, brokerURL(cfg), err)
	}

	// The connect handler runs asynchronously and may not have fired yet.
	c.connected.Store(true)
	return c, nil
}

// SetLogger replaces the client logger.
func (c *Client) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	c.logMu.Lock()
	c.logger = logger
	c.logMu.Unlock()
}

func (c *Client) log() Logger {
	c.logMu.RLock()
	defer c.logMu.RUnlock()
	return c.logger
}

func (c *Client) onConnect() {
	c.connected.Store(true)

	c.subMu.RLock()
	for topic, sub := range c.subscriptions {
		c.paho.Subscribe(topic, sub.qos, c.dispatch(sub.handler))
	}
	n := len(c.subscriptions)
	c.subMu.RUnlock()

	c.paho.Publish(Topics{}.SystemStatus(), c.qos, true, statusPayload(c.clientID, statusOnline, ""))
	c.log().Info("mqtt connected", "client_id", c.clientID, "subscriptions", n)
}

func (c *Client) onConnectionLost(err error) {
	c.connected.Store(false)
	c.log().Warn("mqtt connection lost", "client_id", c.clientID, "error", err)
}

// IsConnected reports whether the broker connection is up.
func (c *Client) IsConnected() bool {
	return c.paho != nil && c.connected.Load() && c.paho.IsConnected()
}

// HealthCheck returns ErrNotConnected while the connection is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// Close publishes a graceful offline status and disconnects. It is safe to
// call on a nil client.
func (c *Client) Close() error {
	if c == nil || c.paho == nil {
		return nil
	}
	if c.IsConnected() {
		token := c.paho.Publish(Topics{}.SystemStatus(), c.qos, true, statusPayload(c.clientID, statusOffline, reasonShutdown))
		token.WaitTimeout(publishTimeout)
	}
	c.paho.Disconnect(disconnectQuiesce)
	c.connected.Store(false)
	return nil
}

// dispatch adapts a MessageHandler to paho, logging errors and recovering
// from panics so one bad message cannot stop the client's router.
func (c *Client) dispatch(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				c.log().Error("mqtt handler panic recovered", "topic", msg.Topic(), "panic", r)
			}
		}()
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.log().Warn("mqtt handler failed", "topic", msg.Topic(), "error", err)
		}
	}
}
