package echostore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/roomchat/internal/client/models"
	"github.com/dmitrijs2005/roomchat/internal/client/repositories/localstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu     sync.Mutex
	data   map[string][]byte
	sets   int
	setErr error
	getErr error
}

func newMemRepo() *memRepo { return &memRepo{data: map[string][]byte{}} }

func (r *memRepo) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.data[key], nil
}

func (r *memRepo) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setErr != nil {
		return r.setErr
	}
	r.sets++
	r.data[key] = append([]byte(nil), value...)
	return nil
}

func (r *memRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func msg(id string, sec int64) models.Message {
	return models.Message{ID: id, Text: id, Author: "ann", CreatedAt: &models.Timestamp{Seconds: sec}}
}

func TestStore_ReplaceAllIsNotAMerge(t *testing.T) {
	s := New(newMemRepo())

	s.ReplaceAll([]models.Message{msg("a", 1), msg("b", 2)})
	require.Equal(t, 2, s.Len())

	s.ReplaceAll([]models.Message{msg("c", 3)})
	assert.Equal(t, 1, s.Len())
	_, ok := s.Lookup("a")
	assert.False(t, ok)
	got, ok := s.Lookup("c")
	require.True(t, ok)
	assert.Equal(t, "c", got.Text)
}

func TestStore_MessagesReturnsCopy(t *testing.T) {
	s := New(newMemRepo())
	in := []models.Message{msg("a", 1)}
	s.ReplaceAll(in)

	in[0].Text = "mutated"
	out := s.Messages()
	out[0].Text = "mutated too"

	got, _ := s.Lookup("a")
	assert.Equal(t, "a", got.Text)
}

func TestStore_HideIsIdempotentAndPersisted(t *testing.T) {
	repo := newMemRepo()
	s := New(repo)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx, "r1", "ann"))

	require.NoError(t, s.Hide(ctx, "m1"))
	require.NoError(t, s.Hide(ctx, "m1"))
	require.NoError(t, s.Hide(ctx, "m2"))

	assert.Equal(t, []string{"m1", "m2"}, s.Hidden())
	assert.True(t, s.IsHidden("m1"))
	assert.False(t, s.IsHidden("m3"))
	assert.Equal(t, 2, repo.sets)

	ids, err := localstate.LoadHidden(ctx, repo, "r1", "ann")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids)
}

func TestStore_LoadRestoresAndDeduplicates(t *testing.T) {
	repo := newMemRepo()
	ctx := context.Background()
	require.NoError(t, localstate.SaveHidden(ctx, repo, "r1", "ann", []string{"m1", "m1", "m2"}))

	s := New(repo)
	s.ReplaceAll([]models.Message{msg("old", 1)})
	require.NoError(t, s.Load(ctx, "r1", "ann"))

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, []string{"m1", "m2"}, s.Hidden())

	require.NoError(t, s.Hide(ctx, "m3"))
	ids, err := localstate.LoadHidden(ctx, repo, "r1", "ann")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids)
}

func TestStore_HiddenSetsAreIndependentPerNickname(t *testing.T) {
	repo := newMemRepo()
	ctx := context.Background()

	ann := New(repo)
	bob := New(repo)
	require.NoError(t, ann.Load(ctx, "r1", "ann"))
	require.NoError(t, bob.Load(ctx, "r1", "bob"))

	require.NoError(t, ann.Hide(ctx, "m1"))

	assert.True(t, ann.IsHidden("m1"))
	assert.False(t, bob.IsHidden("m1"))

	require.NoError(t, bob.Load(ctx, "r1", "bob"))
	assert.Empty(t, bob.Hidden())
}

func TestStore_HideFailureLeavesSetUnchanged(t *testing.T) {
	repo := newMemRepo()
	s := New(repo)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx, "r1", "ann"))

	repo.setErr = errors.New("disk full")
	err := s.Hide(ctx, "m1")
	require.Error(t, err)
	assert.False(t, s.IsHidden("m1"))
}

func TestStore_HideRequiresLoad(t *testing.T) {
	s := New(newMemRepo())
	require.ErrorIs(t, s.Hide(context.Background(), "m1"), ErrNotLoaded)
	require.ErrorIs(t, s.ClearHidden(context.Background()), ErrNotLoaded)
}

func TestStore_LoadErrorLeavesStoreEmpty(t *testing.T) {
	repo := newMemRepo()
	repo.getErr = errors.New("io")
	s := New(repo)

	require.Error(t, s.Load(context.Background(), "r1", "ann"))
	require.ErrorIs(t, s.Hide(context.Background(), "m1"), ErrNotLoaded)
}

func TestStore_AttachKeepsMessages(t *testing.T) {
	repo := newMemRepo()
	ctx := context.Background()
	require.NoError(t, localstate.SaveHidden(ctx, repo, "r1", "ann", []string{"m2"}))

	repo.getErr = errors.New("io")
	s := New(repo)
	require.Error(t, s.Load(ctx, "r1", "ann"))
	s.ReplaceAll([]models.Message{msg("m1", 1), msg("m2", 2)})

	require.Error(t, s.Attach(ctx, "r1", "ann"))
	assert.Equal(t, "", s.LoadedRoom())
	assert.Equal(t, 2, s.Len())

	repo.getErr = nil
	require.NoError(t, s.Attach(ctx, "r1", "ann"))
	assert.Equal(t, "r1", s.LoadedRoom())
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.IsHidden("m2"))

	require.NoError(t, s.Hide(ctx, "m1"))
	ids, err := localstate.LoadHidden(ctx, repo, "r1", "ann")
	require.NoError(t, err)
	assert.Equal(t, []string{"m2", "m1"}, ids)
}

func TestStore_ClearHidden(t *testing.T) {
	repo := newMemRepo()
	s := New(repo)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx, "r1", "ann"))
	require.NoError(t, s.Hide(ctx, "m1"))

	require.NoError(t, s.ClearHidden(ctx))
	assert.Empty(t, s.Hidden())
	assert.Empty(t, s.HiddenSet())

	ids, err := localstate.LoadHidden(ctx, repo, "r1", "ann")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStore_ResetKeepsPersistedState(t *testing.T) {
	repo := newMemRepo()
	s := New(repo)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx, "r1", "ann"))
	require.NoError(t, s.Hide(ctx, "m1"))
	s.ReplaceAll([]models.Message{msg("m1", 1)})

	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Hidden())

	require.NoError(t, s.Load(ctx, "r1", "ann"))
	assert.True(t, s.IsHidden("m1"))
}
