package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents a WebSocket connection client
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Manager manages all active WebSocket connections and thread rooms
type Manager struct {
	clients    map[string]*Client
	rooms      map[string]map[string]bool // threadID -> set of userIDs
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan []byte
	mutex      sync.RWMutex
}

// NewManager creates a new WebSocket connection manager
func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan []byte),
	}
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				log.Printf("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if _, ok := m.clients[client.UserID]; ok {
					delete(m.clients, client.UserID)
					for _, members := range m.rooms {
						delete(members, client.UserID)
					}
					close(client.Send)
				}
				m.mutex.Unlock()
				log.Printf("Client unregistered: %s", client.UserID)

			case message := <-m.broadcast:
				m.mutex.RLock()
				for _, client := range m.clients {
					select {
					case client.Send <- message:
					default:
					}
				}
				m.mutex.RUnlock()

			case <-ctx.Done():
				return
			}
		}
	}()
}

// JoinThreadRoom adds a user to a thread room for targeted broadcasts
func (m *Manager) JoinThreadRoom(threadID, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.rooms[threadID] == nil {
		m.rooms[threadID] = make(map[string]bool)
	}
	m.rooms[threadID][userID] = true
}

// LeaveThreadRoom removes a user from a thread room
func (m *Manager) LeaveThreadRoom(threadID, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if members, ok := m.rooms[threadID]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(m.rooms, threadID)
		}
	}
}

// SendToUser sends a message to a specific user
func (m *Manager) SendToUser(userID string, message []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if ok {
		select {
		case client.Send <- message:
		default:
			log.Printf("Dropping message for slow client %s", userID)
		}
	}
}

// SendToThreadRoom broadcasts to every member of the thread room except the
// excluded user (usually the sender)
func (m *Manager) SendToThreadRoom(threadID string, message []byte, excludeUserID string) {
	m.mutex.RLock()
	members := make([]string, 0, len(m.rooms[threadID]))
	for userID := range m.rooms[threadID] {
		if userID != excludeUserID {
			members = append(members, userID)
		}
	}
	m.mutex.RUnlock()

	for _, userID := range members {
		m.SendToUser(userID, message)
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump(m *Manager, handle func(client *Client, message []byte)) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		if handle != nil {
			handle(c, message)
		}
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		err := c.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
	}
}
