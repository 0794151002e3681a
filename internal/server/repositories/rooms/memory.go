package rooms

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/roomchat/internal/common"
	"github.com/dmitrijs2005/roomchat/internal/server/models"
)

// MemoryRepository keeps rooms in a map. It is used when no database is
// configured and in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	rooms map[string]models.Room
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rooms: make(map[string]models.Room)}
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneRoom(room), nil
}

func (r *MemoryRepository) CreateIfAbsent(_ context.Context, room *models.Room) (*models.Room, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.rooms[room.ID]; ok {
		return cloneRoom(existing), false, nil
	}
	stored := *cloneRoom(*room)
	r.rooms[room.ID] = stored
	return cloneRoom(stored), true, nil
}

func cloneRoom(r models.Room) *models.Room {
	out := r
	out.PasskeyHash = append([]byte(nil), r.PasskeyHash...)
	out.PasskeySalt = append([]byte(nil), r.PasskeySalt...)
	return &out
}
