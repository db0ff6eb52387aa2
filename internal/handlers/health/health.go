package health

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"

	"kodi-recall/internal/store"
)

// Pinger probes host JSON-RPC reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SocketState reports whether the notification socket is up.
type SocketState interface {
	Connected() bool
}

type Status struct {
	OK        bool        `json:"ok"`
	Timestamp string      `json:"timestamp"`
	Host      HostHealth  `json:"host"`
	Store     StoreHealth `json:"store"`
}

type HostHealth struct {
	OK            bool   `json:"ok"`
	Error         string `json:"error,omitempty"`
	Notifications bool   `json:"notifications"`
	PingTime      string `json:"ping_time"`
}

type StoreHealth struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	File    string `json:"file"`
	Entries int    `json:"entries"`
}

// Health reports host reachability, notification-socket state and the
// backing file. Any degraded part answers 503.
func Health(host Pinger, socket SocketState, list *store.PlaybackList, timeout time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		status := Status{OK: true, Timestamp: time.Now().Format(time.RFC3339)}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		pingStart := time.Now()
		if err := host.Ping(ctx); err != nil {
			status.OK = false
			status.Host.Error = err.Error()
		} else {
			status.Host.OK = true
		}
		status.Host.PingTime = time.Since(pingStart).String()

		status.Host.Notifications = socket.Connected()
		if !status.Host.Notifications {
			status.OK = false
		}

		status.Store.File = list.File()
		status.Store.Entries = list.Len()
		if _, err := os.Stat(list.File()); err != nil {
			status.OK = false
			status.Store.Error = err.Error()
		} else {
			status.Store.OK = true
		}

		if !status.OK {
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	}
}
