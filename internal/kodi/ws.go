package kodi

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"kodi-recall/internal/logging"
)

// Listener consumes host notifications over the WebSocket endpoint and
// hands them to Handler. Set Handler before Start; it is invoked from the
// read goroutine, one notification at a time.
type Listener struct {
	URL     string
	Handler func(Notification)

	cancel context.CancelFunc
	log    zerolog.Logger

	mu        sync.RWMutex
	connected bool
}

func NewListener(url string) *Listener {
	return &Listener{
		URL: url,
		log: logging.WithComponent("kodi-ws"),
	}
}

// Connected reports whether the notification socket is currently up.
func (l *Listener) Connected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.connected
}

func (l *Listener) setConnected(v bool) {
	l.mu.Lock()
	l.connected = v
	l.mu.Unlock()
}

func (l *Listener) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}
	conn, resp, err := dialer.DialContext(ctx, l.URL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// Start launches the listen/reconnect loop in a goroutine. It runs until
// Stop is called or the parent context is cancelled.
func (l *Listener) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	go func() {
		retry := 2 * time.Second
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			conn, err := l.dial(ctx)
			if err != nil {
				l.log.Warn().Err(err).Str("url", l.URL).Dur("retry_in", retry).Msg("dial failed")
				select {
				case <-ctx.Done():
					return
				case <-time.After(retry):
				}
				if retry < 30*time.Second {
					retry *= 2
				}
				continue
			}

			l.setConnected(true)
			l.log.Info().Str("url", l.URL).Msg("notification socket connected")
			retry = 2 * time.Second

			l.readLoop(ctx, conn)

			l.setConnected(false)
			if ctx.Err() != nil {
				return
			}
			l.log.Warn().Dur("retry_in", retry).Msg("notification socket lost, reconnecting")
			select {
			case <-ctx.Done():
				return
			case <-time.After(retry):
			}
		}
	}()
}

func (l *Listener) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				l.log.Debug().Err(err).Msg("read failed")
			}
			return
		}

		var envelope struct {
			Method string `json:"method"`
			Params struct {
				Data   json.RawMessage `json:"data"`
				Sender string          `json:"sender"`
			} `json:"params"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			l.log.Debug().Err(err).Msg("unparseable notification, skipped")
			continue
		}
		// Frames without a method are call responses, not notifications.
		if envelope.Method == "" {
			continue
		}

		l.log.Debug().Str("method", envelope.Method).Str("sender", envelope.Params.Sender).Msg("notification")
		if l.Handler != nil {
			l.Handler(Notification{
				Method: envelope.Method,
				Sender: envelope.Params.Sender,
				Data:   envelope.Params.Data,
			})
		}
	}
}

func (l *Listener) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
}
