package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Muthu-kesavan/Cloud-Chat-v2/internal/api"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/internal/auth"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/internal/channel"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/internal/config"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/internal/database"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/internal/fanout"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/internal/presence"
	cloudredis "github.com/Muthu-kesavan/Cloud-Chat-v2/internal/redis"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/internal/websocket"
	pkgdatabase "github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/database"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/interfaces"
)

// Application coordinates all system components
// Clean dependency injection pattern with proper initialization order
type Application struct {
	config        *config.Config
	store         *database.Manager
	channels      *channel.Manager
	registry      *websocket.Registry
	coordinator   *presence.Coordinator
	limiter       *fanout.RateLimiter
	redisPresence *cloudredis.PresenceStore
	apiServer     *api.Server
	httpServer    *http.Server
}

// NewApplication creates a new application instance with all components initialized.
// Component initialization follows strict dependency order:
// Database → Channels → Registry → Presence → Fanout → API → WebSocket → HTTP
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// Validate configuration before component initialization
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// STEP 1: Initialize database manager (foundation layer, runs migrations)
	dbConfig := &pkgdatabase.Config{
		DatabasePath:    cfg.Database.Path,
		MaxConnections:  10,
		ConnMaxLifetime: cfg.Database.Timeout,
		ConnMaxIdleTime: cfg.Database.Timeout / 3,
	}

	store, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database manager: %w", err)
	}

	// STEP 2: Initialize channel manager with store dependency
	channels := channel.NewManager(store)

	// STEP 3: Initialize WebSocket registry for connection tracking
	registry := websocket.NewRegistry()

	// STEP 4: Initialize presence coordinator
	// FUNCTIONAL DISCOVERY: Redis presence is selected only when configured;
	// the in-memory store keeps single-process deployments dependency-free
	var presenceStore interfaces.PresenceStore
	var redisPresence *cloudredis.PresenceStore
	if cfg.Redis != nil && cfg.Redis.URL != "" {
		redisPresence, err = cloudredis.NewPresenceStore(cfg.Redis.URL)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		presenceStore = redisPresence
	} else {
		presenceStore = presence.NewMemoryStore()
	}
	coordinator := presence.NewCoordinator(registry, presenceStore)

	// STEP 5: Initialize fanout engines sharing one rate limiter
	limiter := fanout.NewRateLimiter()
	directEngine := fanout.NewEngine(registry, store, limiter)
	channelEngine := fanout.NewChannelEngine(registry, store, limiter)
	relay := fanout.NewRelay(registry)

	// STEP 6: Initialize token manager and API server
	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	apiServer := api.NewServer(store, channels, tokens, registry)

	// STEP 7: Initialize WebSocket handler with transport tuning from config
	wsConfig := websocket.Config{
		PingInterval: cfg.WebSocket.PingInterval,
		ReadTimeout:  cfg.WebSocket.ReadTimeout,
		WriteTimeout: cfg.WebSocket.WriteTimeout,
		BufferSize:   cfg.WebSocket.BufferSize,
	}
	wsHandler := websocket.NewHandler(registry, tokens, coordinator, directEngine, channelEngine, relay, wsConfig)

	// STEP 8: Setup HTTP server with both API and WebSocket endpoints
	mux := http.NewServeMux()
	mux.Handle("/api/", apiServer)
	mux.Handle("/health", apiServer)
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &Application{
		config:        cfg,
		store:         store,
		channels:      channels,
		registry:      registry,
		coordinator:   coordinator,
		limiter:       limiter,
		redisPresence: redisPresence,
		apiServer:     apiServer,
		httpServer:    httpServer,
	}, nil
}

// Start begins application execution.
// Startup coordination ensures all components ready before serving:
// the presence coordinator starts first so connect events are never dropped,
// then the HTTP server accepts connections.
func (app *Application) Start(ctx context.Context) error {
	log.Printf("Starting CloudChat application on %s", app.httpServer.Addr)

	// STEP 1: Start presence coordinator (background event processing)
	if err := app.coordinator.Start(ctx); err != nil {
		return fmt.Errorf("failed to start presence coordinator: %w", err)
	}

	// Prune idle senders from the rate limiter for the process lifetime
	app.limiter.StartCleanup(ctx)

	// STEP 2: Start HTTP server (accepts connections)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Verify server is ready before returning
	select {
	case err := <-serverErrCh:
		// Cleanup on startup failure
		app.coordinator.Stop()
		return err
	case <-time.After(100 * time.Millisecond):
		log.Printf("CloudChat application started successfully")
		return nil
	case <-ctx.Done():
		// Context cancelled during startup
		app.coordinator.Stop()
		return ctx.Err()
	}
}

// Stop gracefully shuts down the application.
// Reverse dependency order: HTTP → Presence → Redis → Database
func (app *Application) Stop(ctx context.Context) error {
	log.Printf("Shutting down CloudChat application")

	// STEP 1: Stop accepting new connections
	if err := app.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// STEP 2: Stop presence processing
	if err := app.coordinator.Stop(); err != nil {
		log.Printf("Presence coordinator shutdown error: %v", err)
	}

	// STEP 3: Close redis connection if one was opened
	if app.redisPresence != nil {
		if err := app.redisPresence.Close(); err != nil {
			log.Printf("Redis shutdown error: %v", err)
		}
	}

	// STEP 4: Close database connections
	if err := app.store.Close(); err != nil {
		log.Printf("Database shutdown error: %v", err)
	}

	log.Printf("CloudChat application shutdown complete")
	return nil
}

// GetAddr returns the server address for external connections
func (app *Application) GetAddr() string {
	return app.httpServer.Addr
}
