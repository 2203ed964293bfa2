package notifyws

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
	websocket "github.com/gofiber/contrib/websocket"
)

// Hub fans notifications out to connected clients. Delivery is push-only
// and best-effort; the stored notification row is the durable copy.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *envelope
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

type envelope struct {
	userID  string
	payload *Message
}

type Message struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification,omitempty"`
	Timestamp    string               `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *envelope, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Push queues a notification for every open connection of the user. A
// full broadcast queue drops the push rather than blocking the caller.
func (h *Hub) Push(userID int64, notification models.Notification) {
	env := &envelope{
		userID: strconv.FormatInt(userID, 10),
		payload: &Message{
			Type:         "notification",
			Notification: &notification,
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
		},
	}
	select {
	case h.broadcast <- env:
	default:
	}
}

func (h *Hub) deliver(env *envelope) {
	encoded, err := json.Marshal(env.payload)
	if err != nil {
		log.Printf("notification hub encode: %v", err)
		return
	}
	h.sendToUser(env.userID, encoded)
}

func (h *Hub) sendToUser(userID string, payload []byte) {
	set, ok := h.clients[userID]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, userID)
	}
}

// ReadPump drains the connection until the client goes away. Incoming
// frames carry no meaning on this stream.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
