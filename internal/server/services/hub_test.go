package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishCoalesces(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("lobby")
	defer cancel()

	h.Publish("lobby")
	h.Publish("lobby")
	require.NoError(t, h.Notify(context.Background(), "lobby"))

	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single coalesced signal")
	default:
	}
}

func TestHub_RoomsAreIsolated(t *testing.T) {
	h := NewHub()
	lobby, cancelLobby := h.Subscribe("lobby")
	defer cancelLobby()
	vault, cancelVault := h.Subscribe("vault")
	defer cancelVault()

	h.Publish("vault")

	select {
	case <-lobby:
		t.Fatal("lobby must not be signalled")
	default:
	}
	<-vault
}

func TestHub_CancelRemovesWatcher(t *testing.T) {
	h := NewHub()
	_, c1 := h.Subscribe("lobby")
	_, c2 := h.Subscribe("lobby")
	assert.Equal(t, 2, h.Watchers("lobby"))

	c1()
	c1()
	assert.Equal(t, 1, h.Watchers("lobby"))
	c2()
	assert.Equal(t, 0, h.Watchers("lobby"))

	assert.NotPanics(t, func() { h.Publish("lobby") })
}

func TestHub_PublishAll(t *testing.T) {
	h := NewHub()
	lobby, c1 := h.Subscribe("lobby")
	defer c1()
	vault, c2 := h.Subscribe("vault")
	defer c2()

	h.PublishAll()

	<-lobby
	<-vault
}
