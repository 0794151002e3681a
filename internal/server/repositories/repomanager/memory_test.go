package repomanager

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/roomchat/internal/server/models"
	"github.com/dmitrijs2005/roomchat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/roomchat/internal/server/repositories/rooms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepositoryManager_SharesRepositories(t *testing.T) {
	ctx := context.Background()
	var m RepositoryManager = NewInMemoryRepositoryManager()
	require.NoError(t, m.RunMigrations(ctx))

	err := m.InTx(ctx, func(ctx context.Context, r rooms.Repository, msgs messages.Repository) error {
		_, _, err := r.CreateIfAbsent(ctx, &models.Room{ID: "lobby"})
		return err
	})
	require.NoError(t, err)

	got, err := m.Rooms().Get(ctx, "lobby")
	require.NoError(t, err)
	assert.Equal(t, "lobby", got.ID)
	require.NoError(t, m.Close())
}

func TestInMemoryRepositoryManager_InTxSerializes(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryRepositoryManager()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.InTx(ctx, func(context.Context, rooms.Repository, messages.Repository) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
