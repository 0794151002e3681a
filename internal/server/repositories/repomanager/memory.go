package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/roomchat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/roomchat/internal/server/repositories/rooms"
)

// InMemoryRepositoryManager keeps everything in process memory. InTx
// serializes callers but cannot roll back: a fn that fails halfway leaves
// its earlier writes in place.
type InMemoryRepositoryManager struct {
	mu       sync.Mutex
	rooms    *rooms.MemoryRepository
	messages *messages.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		rooms:    rooms.NewMemoryRepository(),
		messages: messages.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Rooms() rooms.Repository {
	return m.rooms
}

func (m *InMemoryRepositoryManager) Messages() messages.Repository {
	return m.messages
}

func (m *InMemoryRepositoryManager) InTx(ctx context.Context, fn TxFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m.rooms, m.messages)
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
