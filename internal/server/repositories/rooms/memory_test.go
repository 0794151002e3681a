package rooms

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/roomchat/internal/common"
	"github.com/dmitrijs2005/roomchat/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.Get(ctx, "lobby")
	require.ErrorIs(t, err, common.ErrorNotFound)

	got, created, err := r.CreateIfAbsent(ctx, &models.Room{ID: "lobby"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "lobby", got.ID)

	got, created, err = r.CreateIfAbsent(ctx, &models.Room{ID: "lobby", HasPasskey: true})
	require.NoError(t, err)
	assert.False(t, created)
	assert.False(t, got.HasPasskey)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	in := &models.Room{ID: "vault", HasPasskey: true, PasskeyHash: []byte("hash")}
	_, _, err := r.CreateIfAbsent(ctx, in)
	require.NoError(t, err)
	in.PasskeyHash[0] = 'X'

	got, err := r.Get(ctx, "vault")
	require.NoError(t, err)
	got.PasskeyHash[1] = 'Y'

	again, err := r.Get(ctx, "vault")
	require.NoError(t, err)
	assert.Equal(t, []byte("hash"), again.PasskeyHash)
}

func TestMemoryRepository_ConcurrentCreateHasOneWinner(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := r.CreateIfAbsent(ctx, &models.Room{ID: "race"})
			if err == nil && created {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}
