package services

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/roomchat/internal/client/client/clienttest"
	"github.com/dmitrijs2005/roomchat/internal/client/echostore"
	"github.com/dmitrijs2005/roomchat/internal/logging"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemRepo() *memRepo { return &memRepo{data: map[string][]byte{}} }

func (r *memRepo) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data[key], nil
}

func (r *memRepo) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = append([]byte(nil), value...)
	return nil
}

func (r *memRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

// participant is one simulated device joined to a room.
type participant struct {
	nick  string
	fake  *clienttest.Fake
	store *echostore.Store
	sub   *Subscription
	mut   *Mutations
}

func join(t *testing.T, b *clienttest.Backend, repo *memRepo, roomID, nick string) *participant {
	t.Helper()
	ctx := context.Background()

	f := b.Session(nick)
	store := echostore.New(repo)
	require.NoError(t, store.Load(ctx, roomID, nick))

	d := NewGate(f, logging.Nop()).Resolve(ctx, roomID, "")
	require.True(t, d.Allowed())

	sub := NewSubscription(f, store, logging.Nop(), nil)
	require.NoError(t, sub.Open(ctx, roomID, d))
	t.Cleanup(sub.Close)

	mut := NewMutations(f, store, logging.Nop())
	mut.Bind(roomID, nick, d)

	return &participant{nick: nick, fake: f, store: store, sub: sub, mut: mut}
}
