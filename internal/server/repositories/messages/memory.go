package messages

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/roomchat/internal/common"
	"github.com/dmitrijs2005/roomchat/internal/server/models"
)

// MemoryRepository keeps every room's messages in insertion order.
type MemoryRepository struct {
	mu    sync.RWMutex
	rooms map[string][]models.Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rooms: make(map[string][]models.Message)}
}

// LockRoom is a no-op; callers serialize through the storage transaction.
func (r *MemoryRepository) LockRoom(context.Context, string) error {
	return nil
}

func (r *MemoryRepository) LastCreatedAt(_ context.Context, roomID string) (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var last time.Time
	for _, m := range r.rooms[roomID] {
		if m.CreatedAt.After(last) {
			last = m.CreatedAt
		}
	}
	return last, nil
}

func (r *MemoryRepository) Create(_ context.Context, m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rooms[m.RoomID] {
		if existing.ID == m.ID {
			return common.ErrorAlreadyExists
		}
	}
	r.rooms[m.RoomID] = append(r.rooms[m.RoomID], cloneMessage(*m))
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, roomID, id string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.rooms[roomID] {
		if m.ID == id {
			out := cloneMessage(m)
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Update(_ context.Context, m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.rooms[m.RoomID]
	for i := range msgs {
		if msgs[i].ID != m.ID {
			continue
		}
		msgs[i].Text = m.Text
		msgs[i].Deleted = m.Deleted
		msgs[i].EditedAt = cloneTime(m.EditedAt)
		return nil
	}
	return common.ErrorNotFound
}

func (r *MemoryRepository) ListByRoom(_ context.Context, roomID string) ([]models.Message, error) {
	r.mu.RLock()
	out := make([]models.Message, 0, len(r.rooms[roomID]))
	for _, m := range r.rooms[roomID] {
		out = append(out, cloneMessage(m))
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func cloneMessage(m models.Message) models.Message {
	m.EditedAt = cloneTime(m.EditedAt)
	return m
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
