package handlers

import (
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/arnold/habits-api/internal/middleware"
	"github.com/arnold/habits-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// messageWriter is the part of a websocket connection the hub writes to.
type messageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// connection wraps a websocket connection. Writes to one connection are
// serialised; gorilla connections allow a single concurrent writer.
type connection struct {
	mu   sync.Mutex
	conn messageWriter
}

func (c *connection) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub tracks each user's open connections and implements services.Publisher.
type Hub struct {
	mu    sync.RWMutex
	users map[uuid.UUID]map[*connection]bool
}

func NewHub() *Hub {
	return &Hub{users: make(map[uuid.UUID]map[*connection]bool)}
}

var _ services.Publisher = (*Hub)(nil)

func (h *Hub) register(userID uuid.UUID, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[*connection]bool)
	}
	h.users[userID][conn] = true
	log.Printf("WS register: user %s connected (total: %d)", userID, len(h.users[userID]))
}

func (h *Hub) unregister(userID uuid.UUID, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.users[userID]; ok {
		delete(conns, conn)
		log.Printf("WS unregister: user %s disconnected (remaining: %d)", userID, len(conns))
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
}

// Connections reports how many sockets userID has open.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Publish sends event to every connection of userID. Failed writes are logged
// and dropped; the reader loop cleans the connection up.
func (h *Hub) Publish(userID uuid.UUID, event services.Event) {
	h.mu.RLock()
	conns := make([]*connection, 0, len(h.users[userID]))
	for c := range h.users[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("WS publish marshal error: %v", err)
		return
	}

	for _, c := range conns {
		if err := c.write(msg); err != nil {
			log.Printf("WS write error: %v", err)
		}
	}
}

// WebSocketUpgrade checks the upgrade request and authenticates it.
func (h *Handler) WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		// Browsers cannot set headers on upgrade: ?token=<jwt>
		tokenString := c.Query("token")
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				tokenString = ""
			}
		}

		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authentication token",
			})
		}

		claims, err := middleware.ParseToken(h.secret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("userId", claims.UserID)
		return c.Next()
	}
}

// HandleWebSocket keeps a user's connection registered until it closes.
func (h *Handler) HandleWebSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}

	conn := &connection{conn: c}
	h.hub.register(userID, conn)
	defer h.hub.unregister(userID, conn)

	// Clients only send keepalives.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
