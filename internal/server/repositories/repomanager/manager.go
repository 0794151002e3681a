// Package repomanager vends the room and message repositories of one storage
// backend and runs work against them transactionally.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/roomchat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/roomchat/internal/server/repositories/rooms"
)

// TxFunc receives repositories bound to a single transaction.
type TxFunc func(ctx context.Context, rooms rooms.Repository, messages messages.Repository) error

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Rooms() rooms.Repository
	Messages() messages.Repository
	// InTx commits when fn returns nil.
	InTx(ctx context.Context, fn TxFunc) error
	Close() error
}
