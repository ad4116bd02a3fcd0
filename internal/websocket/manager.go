package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	"ai-note-taker/internal/domain"
)

// Manager is the push hub. All membership changes and broadcasts go through
// the Run loop.
type Manager struct {
	clients        map[string]*Client
	clientsMutex   sync.RWMutex
	register       chan *Client
	unregisterCh   chan *Client
	broadcast      chan []byte
	done           chan struct{}
	maxConnections int
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
}

func NewManager(maxConnections int, writeWait, pongWait, pingPeriod time.Duration) *Manager {
	return &Manager{
		clients:        make(map[string]*Client),
		register:       make(chan *Client),
		unregisterCh:   make(chan *Client),
		broadcast:      make(chan []byte, 64),
		done:           make(chan struct{}),
		maxConnections: maxConnections,
		writeWait:      writeWait,
		pongWait:       pongWait,
		pingPeriod:     pingPeriod,
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every client.
func (m *Manager) Run(ctx context.Context) {
	defer close(m.done)

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return

		case client := <-m.register:
			m.registerClient(client)

		case client := <-m.unregisterCh:
			m.unregisterClient(client)

		case message := <-m.broadcast:
			m.broadcastMessage(message)
		}
	}
}

// Register hands a client to the hub. It reports false once the hub stopped.
func (m *Manager) Register(client *Client) bool {
	select {
	case m.register <- client:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) unregister(client *Client) {
	select {
	case m.unregisterCh <- client:
	case <-m.done:
	}
}

// BroadcastNote queues note for every connected client, the creator included.
func (m *Manager) BroadcastNote(note *domain.Note) error {
	message, err := EncodeNote(note)
	if err != nil {
		return err
	}

	select {
	case m.broadcast <- message:
	case <-m.done:
	}
	return nil
}

func (m *Manager) Connections() int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()
	return len(m.clients)
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if len(m.clients) >= m.maxConnections {
		log.Printf("[WebSocket] Max connections (%d) reached, rejecting %s", m.maxConnections, client.ID)
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	log.Printf("[WebSocket] Client registered: %s", client.ID)
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		close(client.Send)
		log.Printf("[WebSocket] Client unregistered: %s", client.ID)
	}
}

func (m *Manager) broadcastMessage(message []byte) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	for id, client := range m.clients {
		select {
		case client.Send <- message:
		default:
			log.Printf("[WebSocket] Client %s send buffer full, closing connection", id)
			delete(m.clients, id)
			close(client.Send)
		}
	}
}

func (m *Manager) closeAll() {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	for id, client := range m.clients {
		delete(m.clients, id)
		close(client.Send)
	}
}
