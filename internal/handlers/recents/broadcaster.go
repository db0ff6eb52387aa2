package recents

import (
	"sync"

	"github.com/rs/zerolog"
	ws "github.com/saveblush/gofiber3-contrib/websocket"

	"kodi-recall/internal/logging"
	"kodi-recall/internal/playback"
	"kodi-recall/internal/store"
)

// Broadcaster pushes the display-entry list to every connected WebSocket
// client whenever the list changes. Wire Push as the tracker's OnChange
// hook; mutating HTTP handlers call it too.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*ws.Conn]*sync.Mutex // per-connection write lock
	list    *store.PlaybackList
	log     zerolog.Logger
}

func NewBroadcaster(list *store.PlaybackList) *Broadcaster {
	return &Broadcaster{
		clients: make(map[*ws.Conn]*sync.Mutex),
		list:    list,
		log:     logging.WithComponent("http"),
	}
}

// Push snapshots the list and fans it out to all clients.
func (b *Broadcaster) Push() {
	entries := b.snapshot()

	b.mu.RLock()
	conns := make([]*ws.Conn, 0, len(b.clients))
	locks := make([]*sync.Mutex, 0, len(b.clients))
	for conn, wmu := range b.clients {
		conns = append(conns, conn)
		locks = append(locks, wmu)
	}
	b.mu.RUnlock()

	// Send outside the registry lock so one slow client cannot stall
	// registration.
	for i, conn := range conns {
		go b.send(conn, locks[i], entries)
	}
}

// AddClient registers a client and sends it an immediate snapshot.
func (b *Broadcaster) AddClient(conn *ws.Conn) {
	wmu := &sync.Mutex{}
	b.mu.Lock()
	b.clients[conn] = wmu
	b.mu.Unlock()

	b.log.Debug().Int("clients", b.ClientCount()).Msg("watcher connected")
	go b.send(conn, wmu, b.snapshot())
}

// RemoveClient unregisters a client.
func (b *Broadcaster) RemoveClient(conn *ws.Conn) {
	b.mu.Lock()
	delete(b.clients, conn)
	b.mu.Unlock()
}

// ClientCount returns the number of connected watchers.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Stop closes every client connection.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		conn.Close()
	}
	b.clients = make(map[*ws.Conn]*sync.Mutex)
}

func (b *Broadcaster) snapshot() []playback.DisplayEntry {
	return displayEntries(b.list)
}

func (b *Broadcaster) send(conn *ws.Conn, wmu *sync.Mutex, entries []playback.DisplayEntry) {
	wmu.Lock()
	err := conn.WriteJSON(entries)
	wmu.Unlock()
	if err != nil {
		b.RemoveClient(conn)
		conn.Close()
	}
}
