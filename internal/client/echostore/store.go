// Package echostore is the client's read-through cache of a room's message
// stream plus the device-local set of hidden message IDs.
//
// Nothing writes through the store: the message set only changes when a
// remote snapshot replaces it, and the hidden set only grows through Hide.
// All methods are safe for concurrent use.
package echostore

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/roomchat/internal/client/models"
	"github.com/dmitrijs2005/roomchat/internal/client/repositories/localstate"
)

var ErrNotLoaded = errors.New("echo store: no room loaded")

type Store struct {
	repo localstate.Repository

	mu       sync.RWMutex
	roomID   string
	nickname string
	messages []models.Message
	byID     map[string]int
	hidden   []string
	isHidden map[string]struct{}
}

func New(repo localstate.Repository) *Store {
	s := &Store{repo: repo}
	s.resetLocked()
	return s
}

// Load forgets the current room and loads the persisted hidden set of
// (roomID, nickname). On error the store is left empty.
func (s *Store) Load(ctx context.Context, roomID, nickname string) error {
	s.Reset()
	return s.Attach(ctx, roomID, nickname)
}

// Attach loads the persisted hidden set of (roomID, nickname) and binds the
// store to that key, keeping the current message set. On error nothing
// changes.
func (s *Store) Attach(ctx context.Context, roomID, nickname string) error {
	ids, err := localstate.LoadHidden(ctx, s.repo, roomID, nickname)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.roomID = roomID
	s.nickname = nickname
	s.hidden = nil
	s.isHidden = map[string]struct{}{}
	for _, id := range ids {
		s.addHiddenLocked(id)
	}
	return nil
}

// LoadedRoom returns the room whose hidden set is loaded, or "".
func (s *Store) LoadedRoom() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomID
}

// ReplaceAll swaps the whole message set for a snapshot. The slice is copied.
func (s *Store) ReplaceAll(msgs []models.Message) {
	cp := make([]models.Message, len(msgs))
	copy(cp, msgs)
	byID := make(map[string]int, len(cp))
	for i, m := range cp {
		byID[m.ID] = i
	}

	s.mu.Lock()
	s.messages = cp
	s.byID = byID
	s.mu.Unlock()
}

// Messages returns a copy of the unfiltered message set in snapshot order.
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Lookup finds a message by ID in the unfiltered set.
func (s *Store) Lookup(id string) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return models.Message{}, false
	}
	return s.messages[i], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Hide adds id to the hidden set and persists the set. Hiding an already
// hidden ID is a no-op and does not touch storage.
func (s *Store) Hide(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.roomID == "" {
		return ErrNotLoaded
	}
	if _, ok := s.isHidden[id]; ok {
		return nil
	}

	next := append(append([]string(nil), s.hidden...), id)
	if err := localstate.SaveHidden(ctx, s.repo, s.roomID, s.nickname, next); err != nil {
		return err
	}
	s.addHiddenLocked(id)
	return nil
}

// ClearHidden forgets every hidden ID of the loaded (room, nickname).
func (s *Store) ClearHidden(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.roomID == "" {
		return ErrNotLoaded
	}
	if err := localstate.ClearHidden(ctx, s.repo, s.roomID, s.nickname); err != nil {
		return err
	}
	s.hidden = nil
	s.isHidden = map[string]struct{}{}
	return nil
}

func (s *Store) IsHidden(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.isHidden[id]
	return ok
}

// Hidden returns a copy of the hidden IDs in insertion order.
func (s *Store) Hidden() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.hidden...)
}

// HiddenSet returns a copy of the hidden IDs as a set.
func (s *Store) HiddenSet() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{}, len(s.isHidden))
	for id := range s.isHidden {
		out[id] = struct{}{}
	}
	return out
}

// Reset drops messages and the in-memory hidden set. Persisted state is kept.
func (s *Store) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
}

func (s *Store) resetLocked() {
	s.roomID = ""
	s.nickname = ""
	s.messages = nil
	s.byID = map[string]int{}
	s.hidden = nil
	s.isHidden = map[string]struct{}{}
}

func (s *Store) addHiddenLocked(id string) {
	if _, ok := s.isHidden[id]; ok {
		return
	}
	s.isHidden[id] = struct{}{}
	s.hidden = append(s.hidden, id)
}
