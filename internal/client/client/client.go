package client

import (
	"context"

	"github.com/dmitrijs2005/roomchat/internal/client/models"
)

// Client is the remote document store as the chat core consumes it.
type Client interface {
	Ping(ctx context.Context) error

	// ReadRoom returns ErrNotFound when the room does not exist.
	ReadRoom(ctx context.Context, roomID string) (models.Room, error)

	// CreateRoomIfAbsent creates room atomically. When the room already
	// existed, created is false and stored is the existing record.
	CreateRoomIfAbsent(ctx context.Context, room models.Room) (stored models.Room, created bool, err error)

	// Watch subscribes to the room's messages ordered by creation timestamp.
	// onSnapshot receives the full message set after every change; onError
	// receives stream failures while the implementation reconnects. Both run
	// on an internal goroutine. stop ends the subscription.
	Watch(ctx context.Context, roomID string, onSnapshot func([]models.Message), onError func(error)) (stop func(), err error)

	// Append stores m with a store-assigned ID and creation timestamp.
	Append(ctx context.Context, roomID string, m models.Message) (string, error)

	UpdateMessage(ctx context.Context, roomID, messageID string, patch models.MessagePatch) error

	// ExportRoom archives the room transcript and returns a download URL.
	ExportRoom(ctx context.Context, roomID string) (string, error)

	Close() error
}
