package influxdb

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-ephemeris/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	defaultBatchSize     = 100
	defaultFlushInterval = 10 // seconds
)

// Client records ephemeris facts and facade exposure in InfluxDB through
// the non-blocking, batching write API.
//
// All methods are safe for concurrent use.
type Client struct {
	influx   influxdb2.Client
	writeAPI api.WriteAPI

	connected atomic.Bool
	onError   atomic.Pointer[func(error)]
}

// Connect creates the client and pings the server. It returns ErrDisabled
// when the influxdb section is switched off.
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	influx := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, writeOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	healthy, err := influx.Ping(ctx)
	if err != nil {
		influx.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, cfg.URL, err)
	}
	if !healthy {
		influx.Close()
		return nil, fmt.Errorf("%w: %s: server not healthy", ErrConnectionFailed, cfg.URL)
	}

	c := &Client{influx: influx, writeAPI: influx.WriteAPI(cfg.Org, cfg.Bucket)}
	c.connected.Store(true)
	go c.forwardErrors(c.writeAPI.Errors())
	return c, nil
}

// writeOptions applies batch size and flush interval, falling back to the
// defaults for unset or negative values.
func writeOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	flush := cfg.FlushInterval
	if flush <= 0 {
		flush = defaultFlushInterval
	}
	// #nosec G115 -- both values are positive
	return influxdb2.DefaultOptions().
		SetBatchSize(uint(batch)).
		SetFlushInterval(uint(flush) * 1000)
}

func (c *Client) forwardErrors(errs <-chan error) {
	for err := range errs {
		if cb := c.onError.Load(); cb != nil {
			(*cb)(fmt.Errorf("%w: %w", ErrWriteFailed, err))
		}
	}
}

// SetOnError registers a callback for asynchronous write failures.
func (c *Client) SetOnError(cb func(err error)) {
	if cb == nil {
		c.onError.Store(nil)
		return
	}
	c.onError.Store(&cb)
}

// IsConnected reports whether Close has not been called yet.
func (c *Client) IsConnected() bool {
	return c != nil && c.connected.Load()
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	healthy, err := c.influx.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check: %w", ErrNotConnected)
	}
	return nil
}

// Flush sends buffered points now.
func (c *Client) Flush() {
	if c.IsConnected() {
		c.writeAPI.Flush()
	}
}

// Close flushes pending points and releases the client. It is safe to call
// on a nil client.
func (c *Client) Close() error {
	if c == nil || c.influx == nil {
		return nil
	}
	if c.connected.Swap(false) {
		c.writeAPI.Flush()
	}
	c.influx.Close()
	return nil
}

func (c *Client) writePoint(p *write.Point) {
	if c.IsConnected() {
		c.writeAPI.WritePoint(p)
	}
}
