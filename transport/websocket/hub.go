package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/wricardo/foxandgeese/game/engine"
	"github.com/wricardo/foxandgeese/game/presenter"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Pending broadcasts before new ones are dropped.
	broadcastBuffer = 256
)

// Event names
const (
	EventStatusUpdate    = "status_update"
	EventMissionStart    = "mission_start"
	EventAnimateEntities = "animate_entities"
	EventMissionComplete = "mission_complete"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is what clients receive
type Message struct {
	SessionID string      `json:"session_id"`
	Event     string      `json:"event"`
	Status    interface{} `json:"status,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// StageData accompanies mission_start and mission_complete events
type StageData struct {
	Stage     presenter.Stage `json:"stage"`
	MessageID string          `json:"message_id,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	binary    bool
}

type countRequest struct {
	sessionID string
	reply     chan int
}

// Hub maintains the set of active clients and broadcasts messages. The
// client map is only touched by Run.
type Hub struct {
	sessions   map[string]map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	counts     chan countRequest
	done       chan struct{}
	logger     *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		counts:     make(chan countRequest),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's event loop and returns when ctx is done. It must
// only be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.sessions {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case req := <-h.counts:
			req.reply <- len(h.sessions[req.sessionID])
		}
	}
}

// ServeWS upgrades the request and attaches the connection to a session.
// Binary clients receive msgpack frames instead of JSON text.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, binary bool) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: strings.ToLower(sessionID),
		binary:    binary,
	}

	select {
	case client.hub.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// ClientCount returns the number of clients attached to a session. It
// waits for Run to start and reports zero once Run has stopped.
func (h *Hub) ClientCount(sessionID string) int {
	reply := make(chan int, 1)
	select {
	case h.counts <- countRequest{sessionID: strings.ToLower(sessionID), reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}

// BroadcastStatus pushes a status snapshot to every client of a session
func (h *Hub) BroadcastStatus(sessionID string, status interface{}) {
	h.enqueue(&Message{SessionID: sessionID, Event: EventStatusUpdate, Status: status})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{SessionID: sessionID, Event: event, Data: data})
}

// Collaborator returns the presenter collaborator that forwards stage
// notifications of one session to its clients
func (h *Hub) Collaborator(sessionID string) presenter.Collaborator {
	return &sessionCollaborator{hub: h, sessionID: sessionID}
}

// enqueue never blocks; callers hold the service lock
func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("Broadcast queue full, dropping message",
			zap.String("session_id", message.SessionID),
			zap.String("event", message.Event),
		)
	}
}

func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	h.logger.Debug("Client registered",
		zap.String("session_id", client.sessionID),
		zap.Int("clients", len(h.sessions[client.sessionID])),
	)
}

func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	h.logger.Debug("Client unregistered",
		zap.String("session_id", client.sessionID),
		zap.Int("clients", len(clients)),
	)
}

// broadcastMessage encodes a message once per encoding and queues it on
// every client of the session
func (h *Hub) broadcastMessage(message *Message) {
	clients, ok := h.sessions[strings.ToLower(message.SessionID)]
	if !ok {
		return
	}

	var text, binary []byte
	for client := range clients {
		var data []byte
		var err error
		if client.binary {
			if binary == nil {
				binary, err = EncodeMsgpack(message)
			}
			data = binary
		} else {
			if text == nil {
				text, err = json.Marshal(message)
			}
			data = text
		}
		if err != nil {
			h.logger.Error("Failed to encode message", zap.String("event", message.Event), zap.Error(err))
			return
		}

		select {
		case client.send <- data:
		default:
			h.unregisterClient(client)
		}
	}
}

// EncodeMsgpack encodes a message using its JSON field names
func EncodeMsgpack(message *Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(message); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readPump drains the connection so control frames are processed
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket error", zap.String("session_id", c.sessionID), zap.Error(err))
			}
			break
		}
	}
}

// writePump sends queued messages, one frame each, and keeps the
// connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.binary {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(frameType, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type sessionCollaborator struct {
	hub       *Hub
	sessionID string
}

func (c *sessionCollaborator) OnMissionStartStageChanged(stage presenter.Stage) {
	c.hub.BroadcastEvent(c.sessionID, EventMissionStart, StageData{Stage: stage})
}

func (c *sessionCollaborator) OnEntitiesShouldAnimate(results map[string]engine.MoveResult) {
	c.hub.BroadcastEvent(c.sessionID, EventAnimateEntities, results)
}

func (c *sessionCollaborator) OnMissionCompleteStageChanged(stage presenter.Stage, messageID string) {
	c.hub.BroadcastEvent(c.sessionID, EventMissionComplete, StageData{Stage: stage, MessageID: messageID})
}
