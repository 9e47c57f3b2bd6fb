package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Muthu-kesavan/Cloud-Chat-v2/internal/auth"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/internal/fanout"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/internal/presence"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/types"
)

// WebSocket upgrader with production-ready settings
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development; deployments should restrict this
		return true
	},
	HandshakeTimeout: 10 * time.Second,
}

// Handler manages the WebSocket connection lifecycle: token validation,
// registry membership, presence transitions and event dispatch into the
// fanout engines.
// ARCHITECTURAL DISCOVERY: One logical dispatch flow per connection - the
// read loop processes events to completion in order, so a sender's own
// operations cannot interleave with each other
type Handler struct {
	registry      *Registry
	tokens        *auth.TokenManager
	coordinator   *presence.Coordinator
	directEngine  *fanout.Engine
	channelEngine *fanout.ChannelEngine
	relay         *fanout.Relay
	config        Config
}

// NewHandler creates a WebSocket handler with dependency injection
func NewHandler(registry *Registry, tokens *auth.TokenManager, coordinator *presence.Coordinator,
	directEngine *fanout.Engine, channelEngine *fanout.ChannelEngine, relay *fanout.Relay, config Config) *Handler {
	return &Handler{
		registry:      registry,
		tokens:        tokens,
		coordinator:   coordinator,
		directEngine:  directEngine,
		channelEngine: channelEngine,
		relay:         relay,
		config:        config,
	}
}

// HandleWebSocket validates the token, upgrades, registers the connection
// and broadcasts the online transition.
// FUNCTIONAL DISCOVERY: Validation before upgrade keeps invalid requests on
// the cheap HTTP error path instead of consuming socket resources
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenString := auth.ExtractTokenFromRequest(r)
	if tokenString == "" {
		http.Error(w, ErrMissingToken.Error(), http.StatusUnauthorized)
		return
	}

	userID, err := h.tokens.ValidateToken(tokenString)
	if err != nil {
		http.Error(w, ErrInvalidToken.Error(), http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn := NewConnection(wsConn, h.config)
	conn.SetUserID(userID)

	// Last-connect-wins: a reconnect replaces the previous mapping; the old
	// transport's own disconnect handles its cleanup independently
	h.registry.Register(userID, conn)

	if err := h.coordinator.UserOnline(userID); err != nil {
		log.Printf("Presence online signal failed for %s: %v", userID, err)
	}

	log.Printf("User connected: %s", userID)
	go h.handleConnection(conn)
}

// handleConnection runs the per-connection read loop with heartbeat monitoring
func (h *Handler) handleConnection(conn *Connection) {
	userID := conn.GetUserID()

	defer func() {
		// FUNCTIONAL DISCOVERY: Same-instance unregister first, then presence:
		// if a reconnect already replaced this handle the user is still online
		// and no offline notice must be broadcast
		h.registry.UnregisterConnection(conn)
		if _, live := h.registry.Lookup(userID); !live {
			if err := h.coordinator.UserOffline(userID); err != nil {
				log.Printf("Presence offline signal failed for %s: %v", userID, err)
			}
		}
		_ = conn.Close()
		log.Printf("Client disconnected: %s", userID)
	}()

	// TECHNICAL DISCOVERY: Read deadline twice the ping interval provides
	// reliable connection health monitoring with the default settings
	if err := conn.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout)); err != nil {
		return
	}
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	})

	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(h.config.WriteTimeout)); err != nil {
					return
				}
			case <-conn.ctx.Done():
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for %s: %v", userID, err)
			}
			return
		}

		if messageType == websocket.TextMessage {
			h.dispatch(conn, data)
		}
	}
}

// dispatch decodes one inbound frame and routes it to the owning component.
// Errors are acknowledged to the acting connection only, never broadcast.
func (h *Handler) dispatch(conn *Connection, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.ack(conn, "", ErrMalformedData)
		return
	}

	userID := conn.GetUserID()
	ctx := context.Background()

	switch env.Event {
	case types.EventSendMessage:
		var req sendMessageRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.ack(conn, env.Ack, ErrMalformedData)
			return
		}
		message := &types.Message{
			SenderID:    userID,
			RecipientID: &req.Recipient,
			Kind:        req.Kind,
			Content:     req.Content,
			FileURL:     req.FileURL,
			Location:    req.Location,
			Post:        req.Post,
		}
		messageData, err := h.directEngine.SendDirectMessage(ctx, message)
		h.ackData(conn, env.Ack, messageData, err)

	case types.EventSendChannelMessage:
		var req sendChannelMessageRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.ack(conn, env.Ack, ErrMalformedData)
			return
		}
		message := &types.Message{
			SenderID: userID,
			Kind:     req.Kind,
			Content:  req.Content,
			FileURL:  req.FileURL,
			Location: req.Location,
			Post:     req.Post,
		}
		messageData, err := h.channelEngine.SendChannelMessage(ctx, req.ChannelID, message)
		h.ackData(conn, env.Ack, messageData, err)

	case types.EventDeleteMessage:
		var req deleteMessageRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.ack(conn, env.Ack, ErrMalformedData)
			return
		}
		err := h.directEngine.DeleteMessage(ctx, userID, req.MessageID)
		if err != nil {
			h.ack(conn, env.Ack, err)
			return
		}
		h.ackResult(conn, env.Ack, &ackResult{Status: ackOK, MessageID: req.MessageID})

	case types.EventTypingStart:
		var req typingRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return // Ephemeral signals are never acknowledged
		}
		h.relay.TypingStart(userID, req.Recipient)

	case types.EventTypingStop:
		var req typingRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		h.relay.TypingStop(userID, req.Recipient)

	case types.EventUserOnline:
		// The authenticated identity is authoritative; any user id carried in
		// the payload is ignored
		if err := h.coordinator.UserOnline(userID); err != nil {
			log.Printf("Presence online signal failed for %s: %v", userID, err)
		}

	case types.EventUserOffline:
		// Best-effort going-offline signal sent before page unload
		if err := h.coordinator.UserOffline(userID); err != nil {
			log.Printf("Presence offline signal failed for %s: %v", userID, err)
		}

	default:
		h.ack(conn, env.Ack, ErrUnknownEvent)
	}
}

// ack reports an error (or bare success) to the acting connection
func (h *Handler) ack(conn *Connection, ackID string, err error) {
	if err == nil {
		h.ackResult(conn, ackID, &ackResult{Status: ackOK})
		return
	}
	log.Printf("Event from %s failed: %v", conn.GetUserID(), err)
	h.ackResult(conn, ackID, &ackResult{Status: ackError, Error: err.Error()})
}

// ackData acknowledges a send operation, carrying the joined message on success
func (h *Handler) ackData(conn *Connection, ackID string, data *types.MessageData, err error) {
	if err != nil {
		h.ack(conn, ackID, err)
		return
	}
	result := &ackResult{Status: ackOK, MessageData: data}
	if data != nil {
		result.MessageID = data.ID
	}
	h.ackResult(conn, ackID, result)
}

// ackResult writes the acknowledgement frame when the client asked for one
func (h *Handler) ackResult(conn *Connection, ackID string, result *ackResult) {
	if ackID == "" {
		return // Client did not request an acknowledgement
	}
	if err := conn.WriteJSON(&types.Event{Event: types.EventAck, Ack: ackID, Data: result}); err != nil {
		log.Printf("Failed to send ack to %s: %v", conn.GetUserID(), err)
	}
}
