package channel

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/interfaces"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/types"
)

// Manager owns channel creation and membership checks, keeping recently
// used channels in memory in front of the store
type Manager struct {
	store    interfaces.Store
	channels map[string]*types.Channel // channelID -> Channel
	mu       sync.RWMutex
}

// NewManager creates a new channel manager
func NewManager(store interfaces.Store) *Manager {
	return &Manager{
		store:    store,
		channels: make(map[string]*types.Channel),
	}
}

// CreateChannel validates, persists and caches a new channel.
// FUNCTIONAL DISCOVERY: The admin is held separately from the member list;
// an admin who also appears among the members is tolerated and the fanout
// set de-duplicates the overlap
func (m *Manager) CreateChannel(ctx context.Context, name string, adminID string, memberIDs []string) (*types.Channel, error) {
	if name == "" || len(name) > 200 {
		return nil, ErrInvalidChannelName
	}

	if !types.IsValidUserID(adminID) {
		return nil, ErrInvalidAdmin
	}

	if len(memberIDs) == 0 {
		return nil, ErrEmptyMemberList
	}

	uniqueMembers := removeDuplicates(memberIDs)

	for _, memberID := range uniqueMembers {
		if !types.IsValidUserID(memberID) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMember, memberID)
		}
	}

	now := time.Now().UTC()
	ch := &types.Channel{
		ID:        uuid.New().String(),
		Name:      name,
		AdminID:   adminID,
		MemberIDs: uniqueMembers,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.store.CreateChannel(ctx, ch); err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	m.mu.Lock()
	m.channels[ch.ID] = ch
	m.mu.Unlock()

	log.Printf("Created channel: id=%s name=%s members=%d", ch.ID, ch.Name, len(ch.MemberIDs))
	return ch, nil
}

// GetChannel retrieves a channel by ID, cache first
func (m *Manager) GetChannel(ctx context.Context, channelID string) (*types.Channel, error) {
	m.mu.RLock()
	if ch, exists := m.channels[channelID]; exists {
		m.mu.RUnlock()
		return ch, nil
	}
	m.mu.RUnlock()

	ch, err := m.store.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.channels[channelID] = ch
	m.mu.Unlock()

	return ch, nil
}

// IsMember reports whether userID belongs to the channel's recipient set
// (admin included)
func (m *Manager) IsMember(ctx context.Context, channelID string, userID string) (bool, error) {
	ch, err := m.GetChannel(ctx, channelID)
	if err != nil {
		return false, err
	}
	_, ok := ch.RecipientSet()[userID]
	return ok, nil
}

// removeDuplicates removes duplicate IDs while preserving order
func removeDuplicates(ids []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(ids))

	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}

	return result
}
