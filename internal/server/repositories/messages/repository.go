// Package messages stores the message collections of rooms.
package messages

import (
	"context"
	"time"

	"github.com/dmitrijs2005/roomchat/internal/server/models"
)

type Repository interface {
	// LockRoom serializes appends to roomID until the surrounding
	// transaction ends.
	LockRoom(ctx context.Context, roomID string) error
	// LastCreatedAt returns the newest creation timestamp of the room, or
	// the zero time for an empty room.
	LastCreatedAt(ctx context.Context, roomID string) (time.Time, error)
	Create(ctx context.Context, m *models.Message) error
	// Get returns common.ErrorNotFound for an unknown message.
	Get(ctx context.Context, roomID, id string) (*models.Message, error)
	// Update writes the mutable fields of m: text, deleted and editedAt.
	Update(ctx context.Context, m *models.Message) error
	// ListByRoom returns the room's messages oldest first.
	ListByRoom(ctx context.Context, roomID string) ([]models.Message, error)
}
