package transport

import (
	"context"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"

	"main/internal/bus"
	"main/internal/schema"
)

// frame is the outbound wire envelope. The venue bridge routes the
// payload by its routing key.
type frame struct {
	RoutingKey string       `json:"routing_key"`
	Payload    schema.Event `json:"payload"`
}

// Client is the websocket session to the venue bridge. It carries both
// directions: outbound commands and inbound report/snapshot payloads.
type Client struct {
	wss *ws.WebSocket
}

// New prepares a client for the bridge url.
func New(ctx context.Context, url string) *Client {
	return &Client{wss: ws.New(ctx, url)}
}

// Start opens the session.
func (c *Client) Start(ctx context.Context) error {
	if err := c.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start wss")
	}
	return nil
}

// Close tears the session down.
func (c *Client) Close() {
	c.wss.Close()
}

// Send ships one event under a routing key.
func (c *Client) Send(routingKey string, evt schema.Event) error {
	if err := c.wss.WriteJSON(frame{RoutingKey: routingKey, Payload: evt}); err != nil {
		return errors.Wrap(err, "write frame").With("routing_key", routingKey)
	}
	return nil
}

// Observe feeds every inbound message into the dispatcher until the
// context ends or the session closes.
func (c *Client) Observe(ctx context.Context, dispatcher *bus.Dispatcher) (unsubscribe func()) {
	ch, cancel := c.wss.Subscribe()

	go func() {
		defer cancel()
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					logs.Info("websocket subscription closed")
					return
				}
				_ = dispatcher.Process(m)
			}
		}
	}()

	return cancel
}
