// Package rooms stores room records.
package rooms

import (
	"context"

	"github.com/dmitrijs2005/roomchat/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound for an unknown id.
	Get(ctx context.Context, id string) (*models.Room, error)
	// CreateIfAbsent inserts r unless a room with the same id exists. It
	// returns the stored room and whether this call created it.
	CreateIfAbsent(ctx context.Context, r *models.Room) (*models.Room, bool, error)
}
