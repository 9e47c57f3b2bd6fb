package websocket

import (
	"fmt"
	"sync"
	"testing"
)

// stubConn is a minimal Connection for registry tests
type stubConn struct {
	userID string
}

func (c *stubConn) WriteJSON(v interface{}) error { return nil }
func (c *stubConn) Close() error                  { return nil }
func (c *stubConn) GetUserID() string             { return c.userID }
func (c *stubConn) IsAuthenticated() bool         { return true }

func TestRegistryRegisterLookupUnregister(t *testing.T) {
	registry := NewRegistry()
	conn := &stubConn{userID: "alice"}

	if _, exists := registry.Lookup("alice"); exists {
		t.Fatal("empty registry must not resolve")
	}

	registry.Register("alice", conn)
	got, exists := registry.Lookup("alice")
	if !exists || got != conn {
		t.Fatal("registered handle not resolved")
	}

	registry.Unregister("alice")
	if _, exists := registry.Lookup("alice"); exists {
		t.Fatal("unregistered user must not resolve")
	}

	// Idempotent
	registry.Unregister("alice")
}

func TestRegistryLastConnectWins(t *testing.T) {
	registry := NewRegistry()
	first := &stubConn{userID: "alice"}
	second := &stubConn{userID: "alice"}

	registry.Register("alice", first)
	registry.Register("alice", second)

	got, exists := registry.Lookup("alice")
	if !exists {
		t.Fatal("user must still resolve after re-register")
	}
	if got != second {
		t.Error("lookup must return the most recent handle")
	}
	if stats := registry.Stats(); stats["total_connections"] != 1 {
		t.Errorf("re-registering must not grow the registry, got %d entries", stats["total_connections"])
	}
}

func TestUnregisterConnectionSameInstanceCheck(t *testing.T) {
	registry := NewRegistry()
	stale := &stubConn{userID: "alice"}
	replacement := &stubConn{userID: "alice"}

	registry.Register("alice", stale)
	registry.Register("alice", replacement)

	// The stale connection's delayed cleanup must not remove the replacement
	registry.UnregisterConnection(stale)
	got, exists := registry.Lookup("alice")
	if !exists || got != replacement {
		t.Fatal("stale cleanup removed the replacement handle")
	}

	// The replacement's own cleanup does remove it
	registry.UnregisterConnection(replacement)
	if _, exists := registry.Lookup("alice"); exists {
		t.Fatal("own-handle cleanup must unregister")
	}

	// nil and already-gone handles are no-ops
	registry.UnregisterConnection(nil)
	registry.UnregisterConnection(replacement)
}

func TestRegistryConnectionsSnapshot(t *testing.T) {
	registry := NewRegistry()
	for i := 0; i < 5; i++ {
		userID := fmt.Sprintf("user%d", i)
		registry.Register(userID, &stubConn{userID: userID})
	}

	conns := registry.Connections()
	if len(conns) != 5 {
		t.Fatalf("expected 5 handles, got %d", len(conns))
	}

	// Mutating the registry after the snapshot does not affect it
	registry.Unregister("user0")
	if len(conns) != 5 {
		t.Error("snapshot must be independent of later mutations")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("user%d", n%10)
			conn := &stubConn{userID: userID}
			registry.Register(userID, conn)
			registry.Lookup(userID)
			registry.Connections()
			registry.UnregisterConnection(conn)
		}(i)
	}
	wg.Wait()
}
