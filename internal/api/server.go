package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Muthu-kesavan/Cloud-Chat-v2/internal/auth"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/internal/channel"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/interfaces"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/types"
)

// Registry interface to avoid tight coupling to websocket.Registry implementation
type Registry interface {
	Stats() map[string]int
}

// contextKey avoids collisions with other packages' context values
type contextKey string

const userIDKey contextKey = "userID"

// ARCHITECTURAL DISCOVERY: HTTP API layer serves as pure interface between external clients and internal components
// Clean separation - no business logic, only HTTP handling and JSON serialization
type Server struct {
	store    interfaces.Store
	channels *channel.Manager
	tokens   *auth.TokenManager
	registry Registry
	router   *http.ServeMux
}

// FUNCTIONAL DISCOVERY: Constructor initializes all dependencies and sets up routing
// Dependency injection pattern maintains architectural boundaries
func NewServer(store interfaces.Store, channels *channel.Manager, tokens *auth.TokenManager, registry Registry) *Server {
	s := &Server{
		store:    store,
		channels: channels,
		tokens:   tokens,
		registry: registry,
		router:   http.NewServeMux(),
	}

	s.setupRoutes()
	return s
}

// ARCHITECTURAL DISCOVERY: Route setup follows REST conventions with proper middleware
// CORS and JSON middleware applied to all routes for web client compatibility
func (s *Server) setupRoutes() {
	s.router.Handle("/api/auth/signup", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.signup))))
	s.router.Handle("/api/auth/login", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.login))))
	s.router.Handle("/api/messages/", s.corsMiddleware(s.jsonMiddleware(s.authMiddleware(http.HandlerFunc(s.handleMessages)))))
	s.router.Handle("/api/channels", s.corsMiddleware(s.jsonMiddleware(s.authMiddleware(http.HandlerFunc(s.handleChannels)))))
	s.router.Handle("/api/channels/", s.corsMiddleware(s.jsonMiddleware(s.authMiddleware(http.HandlerFunc(s.handleChannelByID)))))
	s.router.Handle("/health", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.healthCheck))))
}

// FUNCTIONAL DISCOVERY: Implement http.Handler interface for integration with standard HTTP server
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Request/Response types for JSON serialization
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *types.User `json:"user"`
	Token string      `json:"token"`
}

type MessagesResponse struct {
	Messages []*types.MessageData `json:"messages"`
}

type CreateChannelRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type CreateChannelResponse struct {
	Channel *types.Channel `json:"channel"`
}

type ListChannelsResponse struct {
	Channels []*types.Channel `json:"channels"`
}

type HealthResponse struct {
	Status      string         `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
	Database    string         `json:"database"`
	Connections map[string]int `json:"connections"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// FUNCTIONAL DISCOVERY: POST /api/auth/signup - Register account, hash password, issue token
func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		s.sendError(w, "Valid email is required", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 6 {
		s.sendError(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.sendError(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	user := &types.User{
		ID:       uuid.New().String(),
		Email:    req.Email,
		Password: hashed,
		Name:     req.Name,
		Created:  time.Now().UTC(),
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateEmail) {
			s.sendError(w, "Email already registered", http.StatusConflict)
		} else {
			s.sendError(w, "Failed to create account", http.StatusInternalServerError)
		}
		return
	}

	token, err := s.tokens.IssueToken(user.ID)
	if err != nil {
		s.sendError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AuthResponse{User: user, Token: token})
}

// FUNCTIONAL DISCOVERY: POST /api/auth/login - Verify credentials and issue token
// FUNCTIONAL DISCOVERY: Unknown email and wrong password return the identical
// error so the endpoint cannot be used to enumerate accounts
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		s.sendError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.sendError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := s.tokens.IssueToken(user.ID)
	if err != nil {
		s.sendError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(AuthResponse{User: user, Token: token})
}

// FUNCTIONAL DISCOVERY: GET /api/messages/{peerID} - Direct-message history with one peer,
// oldest first so the client renders in insertion order
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	peerID := strings.TrimPrefix(r.URL.Path, "/api/messages/")
	peerID = strings.Split(peerID, "/")[0]
	if peerID == "" {
		s.sendError(w, "Peer ID required", http.StatusBadRequest)
		return
	}

	userID := userIDFromContext(r.Context())
	messages, err := s.store.GetMessagesBetween(r.Context(), userID, peerID)
	if err != nil {
		s.sendError(w, "Failed to get messages", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(MessagesResponse{Messages: messages})
}

// FUNCTIONAL DISCOVERY: Handle channels collection endpoints (POST /api/channels, GET /api/channels)
func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createChannel(w, r)
	case http.MethodGet:
		s.listChannels(w, r)
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// FUNCTIONAL DISCOVERY: POST /api/channels - The authenticated caller becomes the admin
func (s *Server) createChannel(w http.ResponseWriter, r *http.Request) {
	var req CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		s.sendError(w, "Channel name is required", http.StatusBadRequest)
		return
	}
	if len(req.Members) == 0 {
		s.sendError(w, "At least one member is required", http.StatusBadRequest)
		return
	}

	adminID := userIDFromContext(r.Context())
	ch, err := s.channels.CreateChannel(r.Context(), req.Name, adminID, req.Members)
	if err != nil {
		if errors.Is(err, channel.ErrInvalidChannelName) || errors.Is(err, channel.ErrInvalidMember) ||
			errors.Is(err, channel.ErrEmptyMemberList) {
			s.sendError(w, err.Error(), http.StatusBadRequest)
		} else {
			s.sendError(w, "Failed to create channel", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateChannelResponse{Channel: ch})
}

// FUNCTIONAL DISCOVERY: GET /api/channels - Channels the caller administers or belongs to
func (s *Server) listChannels(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	channels, err := s.store.GetUserChannels(r.Context(), userID)
	if err != nil {
		s.sendError(w, "Failed to list channels", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(ListChannelsResponse{Channels: channels})
}

// FUNCTIONAL DISCOVERY: GET /api/channels/{id}/messages - History behind a membership check
func (s *Server) handleChannelByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/channels/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		s.sendError(w, "Channel ID required", http.StatusBadRequest)
		return
	}
	channelID := parts[0]

	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if len(parts) < 2 || parts[1] != "messages" {
		s.sendError(w, "Not found", http.StatusNotFound)
		return
	}

	userID := userIDFromContext(r.Context())
	member, err := s.channels.IsMember(r.Context(), channelID, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrChannelNotFound) {
			s.sendError(w, "Channel not found", http.StatusNotFound)
		} else {
			s.sendError(w, "Failed to get channel", http.StatusInternalServerError)
		}
		return
	}
	if !member {
		s.sendError(w, "Not a member of this channel", http.StatusForbidden)
		return
	}

	messages, err := s.store.GetChannelMessages(r.Context(), channelID)
	if err != nil {
		s.sendError(w, "Failed to get channel messages", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(MessagesResponse{Messages: messages})
}

// FUNCTIONAL DISCOVERY: GET /health - System health check with component validation
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	dbStatus := "healthy"

	if err := s.store.HealthCheck(ctx); err != nil {
		status = "unhealthy"
		dbStatus = fmt.Sprintf("error: %v", err)
	}

	response := HealthResponse{
		Status:      status,
		Timestamp:   time.Now(),
		Database:    dbStatus,
		Connections: s.registry.Stats(),
	}

	// FUNCTIONAL DISCOVERY: Return 503 if any component is unhealthy
	if status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// FUNCTIONAL DISCOVERY: Consistent error response format
func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(code),
		Code:    code,
		Message: message,
	})
}

// authMiddleware validates the bearer token and stores the subject in the
// request context for downstream handlers
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := auth.ExtractTokenFromRequest(r)
		if tokenString == "" {
			s.sendError(w, "Missing authentication token", http.StatusUnauthorized)
			return
		}

		userID, err := s.tokens.ValidateToken(tokenString)
		if err != nil {
			log.Printf("Rejected token: %v", err)
			s.sendError(w, "Invalid authentication token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// userIDFromContext returns the authenticated user id placed by authMiddleware
func userIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

// ARCHITECTURAL DISCOVERY: CORS middleware enables web client access
// Allows all origins in development - would be restricted in production
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		// FUNCTIONAL DISCOVERY: Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// FUNCTIONAL DISCOVERY: JSON middleware ensures proper content-type headers
func (s *Server) jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		next.ServeHTTP(w, r)
	})
}
