package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/roomchat/internal/client/client"
	"github.com/dmitrijs2005/roomchat/internal/client/echostore"
	"github.com/dmitrijs2005/roomchat/internal/client/models"
	"github.com/dmitrijs2005/roomchat/internal/logging"
)

// Subscription keeps exactly one live watch on a room's messages and copies
// every snapshot into the echo store.
//
// Callbacks belonging to a closed watch are dropped: each Open bumps a
// generation and callbacks carry the generation they were opened with.
type Subscription struct {
	client   client.Client
	store    *echostore.Store
	logger   logging.Logger
	onChange func()

	mu      sync.Mutex
	gen     uint64
	roomID  string
	stop    func()
	live    bool
	lastErr error
}

// NewSubscription wires a subscription to store. onChange, if not nil, runs
// after every state change, from whatever goroutine caused it.
func NewSubscription(c client.Client, store *echostore.Store, logger logging.Logger, onChange func()) *Subscription {
	if onChange == nil {
		onChange = func() {}
	}
	return &Subscription{
		client:   c,
		store:    store,
		logger:   logger.With("module", "subscription"),
		onChange: onChange,
	}
}

// Open closes any previous watch and opens one on roomID. The gate decision
// must be allowed.
func (s *Subscription) Open(ctx context.Context, roomID string, d Decision) error {
	s.Close()
	if !d.Allowed() {
		return ErrAccessNotGranted
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.roomID = roomID
	s.mu.Unlock()

	stop, err := s.client.Watch(ctx, roomID,
		func(msgs []models.Message) { s.handleSnapshot(gen, msgs) },
		func(err error) { s.handleError(gen, err) },
	)
	if err != nil {
		serr := &SubscriptionError{RoomID: roomID, Err: err}
		s.mu.Lock()
		if s.gen == gen {
			s.lastErr = serr
		}
		s.mu.Unlock()
		s.logger.Warn(ctx, "watch failed", "room", roomID, "error", err)
		s.onChange()
		return serr
	}

	s.mu.Lock()
	if s.gen != gen {
		// Closed while Watch was starting.
		s.mu.Unlock()
		stop()
		return nil
	}
	s.stop = stop
	s.mu.Unlock()

	s.logger.Debug(ctx, "watch opened", "room", roomID)
	return nil
}

func (s *Subscription) handleSnapshot(gen uint64, msgs []models.Message) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.store.ReplaceAll(msgs)
	s.live = true
	s.lastErr = nil
	s.mu.Unlock()

	s.onChange()
}

func (s *Subscription) handleError(gen uint64, err error) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.live = false
	s.lastErr = &SubscriptionError{RoomID: s.roomID, Err: err}
	roomID := s.roomID
	s.mu.Unlock()

	s.logger.Warn(context.Background(), "stream error", "room", roomID, "error", err)
	s.onChange()
}

// Close releases the current watch, if any. Received messages stay in the
// store.
func (s *Subscription) Close() {
	s.mu.Lock()
	s.gen++
	stop := s.stop
	s.stop = nil
	s.live = false
	s.lastErr = nil
	s.roomID = ""
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Live reports whether the latest event on the watch was a snapshot.
func (s *Subscription) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// Err returns the last *SubscriptionError, cleared by the next snapshot.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Subscription) RoomID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}
