package stream

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/websocket/v2"
)

// Client binds one websocket connection to a device session. It implements
// Subscriber; events flow out through a buffered send channel so a slow
// consumer never blocks the publishing frame unit.
type Client struct {
	conn     *websocket.Conn
	deviceID string
	send     chan []byte
	done     chan struct{}
	logger   *slog.Logger
}

func NewClient(conn *websocket.Conn, deviceID string, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		deviceID: deviceID,
		send:     make(chan []byte, 256),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Publish queues an event for delivery. Events are dropped once the client
// is gone or when its buffer is full; a late frame completion may still call
// this after the connection closed.
func (c *Client) Publish(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("event marshal failed", "device_id", c.deviceID, "error", err)
		return
	}

	select {
	case <-c.done:
	case c.send <- message:
	default:
		c.logger.Warn("send buffer full, dropping event", "device_id", c.deviceID)
	}
}

// ReadPump consumes inbound frames until the connection drops and feeds them
// to the coordinator. Submission errors are already reported to subscribers
// as error events, so they only get logged here.
func (c *Client) ReadPump(ctx context.Context, coordinator *Coordinator) {
	defer func() {
		coordinator.CloseSession(c.deviceID, c)
		close(c.done)
		_ = c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame Frame
		if err := json.Unmarshal(message, &frame); err != nil {
			c.Publish(Event{Type: EventError, Data: "message is not valid JSON"})
			continue
		}

		if err := coordinator.SubmitFrame(ctx, c.deviceID, frame); err != nil {
			c.logger.Debug("frame rejected", "device_id", c.deviceID, "frame_id", frame.FrameID, "error", err)
		}
	}
}

// WritePump drains the send channel onto the wire.
func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
	}
}
