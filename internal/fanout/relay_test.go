package fanout

import (
	"testing"

	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/types"
)

func TestTypingSignalsReachRecipientOnly(t *testing.T) {
	registry := newFakeRegistry()
	aliceConn := newFakeConn("alice")
	bobConn := newFakeConn("bob")
	registry.add("alice", aliceConn)
	registry.add("bob", bobConn)

	relay := NewRelay(registry)

	relay.TypingStart("alice", "bob")
	relay.TypingStop("alice", "bob")

	events := bobConn.received()
	if len(events) != 2 {
		t.Fatalf("expected 2 signals at recipient, got %d", len(events))
	}
	if events[0].Event != types.EventUserTyping || events[1].Event != types.EventUserStopTyping {
		t.Errorf("unexpected event sequence: %s, %s", events[0].Event, events[1].Event)
	}

	for _, event := range events {
		signal, ok := event.Data.(*types.TypingSignal)
		if !ok {
			t.Fatalf("unexpected signal payload %T", event.Data)
		}
		if signal.SenderID != "alice" {
			t.Errorf("signal carries wrong sender: %s", signal.SenderID)
		}
	}

	// No sender echo for ephemeral signals
	if len(aliceConn.received()) != 0 {
		t.Error("typing signals must not echo to the sender")
	}
}

func TestTypingSignalToOfflinePeerIsDropped(t *testing.T) {
	registry := newFakeRegistry()
	relay := NewRelay(registry)

	// No panic, no error surface, nothing persisted - the signal just vanishes
	relay.TypingStart("alice", "offline-user")
	relay.TypingStop("alice", "offline-user")
}
