package recents

import (
	"github.com/gofiber/fiber/v3"
	ws "github.com/saveblush/gofiber3-contrib/websocket"
)

// WS upgrades to WebSocket and attaches the client to the broadcaster.
// The client receives a snapshot on connect, then a push on every list
// change.
func WS(b *Broadcaster) fiber.Handler {
	return ws.New(func(conn *ws.Conn) {
		defer func() {
			b.RemoveClient(conn)
			conn.Close()
		}()
		b.AddClient(conn)

		// Drain incoming frames until the peer goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
