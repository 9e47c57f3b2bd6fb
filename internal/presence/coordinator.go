package presence

import (
	"context"
	"log"
	"sync"

	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/interfaces"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/types"
)

// Registry is the broadcast surface the coordinator needs
type Registry interface {
	Connections() []interfaces.Connection
}

// statusEvent is one queued online/offline transition
type statusEvent struct {
	userID   string
	isOnline bool
}

// Coordinator owns the per-user online/offline flag and broadcasts
// transitions to all currently-connected peers.
// ARCHITECTURAL DISCOVERY: Single run-loop goroutine serializes flag updates
// and broadcasts, so connect/disconnect bursts cannot interleave a user's
// online and offline notices out of order.
// Broadcast is best-effort and global: a peer that is not connected simply
// never sees the event - presence is a live signal, not a durable one.
type Coordinator struct {
	registry Registry
	store    interfaces.PresenceStore

	events   chan statusEvent // FUNCTIONAL DISCOVERY: 256 buffer absorbs reconnect storms
	shutdown chan struct{}

	running bool
	mu      sync.RWMutex
	wg      sync.WaitGroup
}

// NewCoordinator creates a presence coordinator
func NewCoordinator(registry Registry, store interfaces.PresenceStore) *Coordinator {
	return &Coordinator{
		registry: registry,
		store:    store,
		events:   make(chan statusEvent, 256),
		shutdown: make(chan struct{}),
	}
}

// Start begins coordinator processing
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.running = true
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(ctx)
	return nil
}

// Stop shuts the coordinator down and waits for in-flight broadcasts
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return ErrNotRunning
	}
	c.running = false
	c.mu.Unlock()

	close(c.shutdown)
	c.wg.Wait()
	return nil
}

// UserOnline records the offline -> online transition and queues the broadcast
func (c *Coordinator) UserOnline(userID string) error {
	return c.queue(statusEvent{userID: userID, isOnline: true})
}

// UserOffline records the online -> offline transition and queues the broadcast.
// Fired on transport disconnect and on the client's explicit going-offline
// signal before page unload.
func (c *Coordinator) UserOffline(userID string) error {
	return c.queue(statusEvent{userID: userID, isOnline: false})
}

func (c *Coordinator) queue(event statusEvent) error {
	c.mu.RLock()
	if !c.running {
		c.mu.RUnlock()
		return ErrNotRunning
	}
	c.mu.RUnlock()

	// TECHNICAL DISCOVERY: Non-blocking send - a full queue drops the event
	// rather than stalling a connection handler on a presence signal
	select {
	case c.events <- event:
		return nil
	default:
		return ErrEventChannelFull
	}
}

func (c *Coordinator) run(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case event := <-c.events:
			c.apply(ctx, event)
		case <-c.shutdown:
			return
		case <-ctx.Done():
			return
		}
	}
}

// apply updates the flag then broadcasts to every live connection
func (c *Coordinator) apply(ctx context.Context, event statusEvent) {
	var err error
	if event.isOnline {
		err = c.store.SetOnline(ctx, event.userID)
	} else {
		err = c.store.SetOffline(ctx, event.userID)
	}
	if err != nil {
		// The flag store failing does not suppress the live broadcast
		log.Printf("Presence flag update failed for %s: %v", event.userID, err)
	}

	update := &types.Event{
		Event: types.EventUpdateOnlineStatus,
		Data:  &types.PresenceUpdate{UserID: event.userID, IsOnline: event.isOnline},
	}

	for _, conn := range c.registry.Connections() {
		// Delivery miss on a dying connection is fine; never an error
		_ = conn.WriteJSON(update)
	}
}

// IsOnline reports the current flag for a user
func (c *Coordinator) IsOnline(ctx context.Context, userID string) (bool, error) {
	return c.store.IsOnline(ctx, userID)
}
