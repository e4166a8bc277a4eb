package stream

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Handler upgrades `GET /ws/:device_id` and runs the client pumps until the
// connection drops.
func Handler(coordinator *Coordinator, logger *slog.Logger) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		deviceID := conn.Params("device_id")
		if deviceID == "" {
			_ = conn.Close()
			return
		}

		client := NewClient(conn, deviceID, logger)
		coordinator.OpenSession(deviceID, client)

		go client.WritePump()
		client.ReadPump(context.Background(), coordinator)
	})
}

func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
