// Package clienttest provides an in-process document store implementing
// client.Client for tests.
//
// A Backend holds the shared state; each Session(nickname) is one client
// connected to it, so several simulated users can talk in the same room.
// Snapshots are delivered synchronously from the goroutine that made the
// change, which keeps tests deterministic.
package clienttest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/roomchat/internal/client/client"
	"github.com/dmitrijs2005/roomchat/internal/client/models"
)

type watcher struct {
	id         int
	onSnapshot func([]models.Message)
	onError    func(error)
}

type Backend struct {
	mu       sync.Mutex
	now      func() time.Time
	last     time.Time
	nextID   int
	rooms    map[string]models.Room
	messages map[string][]models.Message
	watchers map[string]map[int]*watcher
	nextWID  int

	// Counters of remote calls, by operation.
	Reads, Creates, Appends, Updates, Watches int

	// Injected failures. A nil value means success.
	ReadErr, CreateErr, AppendErr, UpdateErr, WatchErr, ExportErr error

	// AfterRead runs after ReadRoom computed its answer and before it
	// returns, without the backend lock held.
	AfterRead func(roomID string)
}

func NewBackend() *Backend {
	return &Backend{
		now:      time.Now,
		rooms:    map[string]models.Room{},
		messages: map[string][]models.Message{},
		watchers: map[string]map[int]*watcher{},
	}
}

// SetClock replaces the time source used for server timestamps.
func (b *Backend) SetClock(now func() time.Time) {
	b.mu.Lock()
	b.now = now
	b.mu.Unlock()
}

// Session returns a client acting as nickname.
func (b *Backend) Session(nickname string) *Fake {
	return &Fake{b: b, nickname: nickname}
}

// Room returns the stored room record.
func (b *Backend) Room(roomID string) (models.Room, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.rooms[roomID]
	return r, ok
}

// Messages returns the stored messages of roomID in creation order.
func (b *Backend) Messages(roomID string) []models.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Message(nil), b.messages[roomID]...)
}

// WatcherCount reports how many subscriptions are open on roomID.
func (b *Backend) WatcherCount(roomID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.watchers[roomID])
}

// FailWatchers reports err to every open subscription of roomID.
func (b *Backend) FailWatchers(roomID string, err error) {
	b.mu.Lock()
	ws := b.watchersLocked(roomID)
	b.mu.Unlock()
	for _, w := range ws {
		w.onError(err)
	}
}

// Broadcast re-sends the current snapshot of roomID to its subscribers.
func (b *Backend) Broadcast(roomID string) {
	b.mu.Lock()
	ws := b.watchersLocked(roomID)
	snap := b.snapshotLocked(roomID)
	b.mu.Unlock()
	for _, w := range ws {
		w.onSnapshot(snap)
	}
}

// PutMessage stores m as is, bypassing ownership rules. Useful to seed rooms
// with pending or out-of-order timestamps.
func (b *Backend) PutMessage(roomID string, m models.Message) {
	b.mu.Lock()
	b.messages[roomID] = append(b.messages[roomID], m)
	b.mu.Unlock()
	b.Broadcast(roomID)
}

func (b *Backend) watchersLocked(roomID string) []*watcher {
	ws := make([]*watcher, 0, len(b.watchers[roomID]))
	for _, w := range b.watchers[roomID] {
		ws = append(ws, w)
	}
	sort.Slice(ws, func(i, j int) bool { return ws[i].id < ws[j].id })
	return ws
}

func (b *Backend) snapshotLocked(roomID string) []models.Message {
	return append([]models.Message(nil), b.messages[roomID]...)
}

// stampLocked returns a server timestamp strictly after the previous one.
func (b *Backend) stampLocked() *models.Timestamp {
	t := b.now()
	if !t.After(b.last) {
		t = b.last.Add(time.Nanosecond)
	}
	b.last = t
	return models.FromTime(t)
}

type Fake struct {
	b        *Backend
	nickname string
	closed   bool
}

var _ client.Client = (*Fake)(nil)

func (f *Fake) Ping(ctx context.Context) error { return nil }

func (f *Fake) ReadRoom(ctx context.Context, roomID string) (models.Room, error) {
	b := f.b
	b.mu.Lock()
	b.Reads++
	room, ok := b.rooms[roomID]
	readErr := b.ReadErr
	hook := b.AfterRead
	b.mu.Unlock()

	if hook != nil {
		hook(roomID)
	}
	if readErr != nil {
		return models.Room{}, readErr
	}
	if !ok {
		return models.Room{}, client.ErrNotFound
	}
	return room, nil
}

func (f *Fake) CreateRoomIfAbsent(ctx context.Context, room models.Room) (models.Room, bool, error) {
	b := f.b
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Creates++
	if b.CreateErr != nil {
		return models.Room{}, false, b.CreateErr
	}
	if existing, ok := b.rooms[room.ID]; ok {
		return existing, false, nil
	}
	room.CreatedAt = b.stampLocked()
	b.rooms[room.ID] = room
	return room, true, nil
}

func (f *Fake) Watch(ctx context.Context, roomID string, onSnapshot func([]models.Message), onError func(error)) (func(), error) {
	if onError == nil {
		onError = func(error) {}
	}

	b := f.b
	b.mu.Lock()
	b.Watches++
	if b.WatchErr != nil {
		err := b.WatchErr
		b.mu.Unlock()
		return nil, err
	}
	b.nextWID++
	w := &watcher{id: b.nextWID, onSnapshot: onSnapshot, onError: onError}
	if b.watchers[roomID] == nil {
		b.watchers[roomID] = map[int]*watcher{}
	}
	b.watchers[roomID][w.id] = w
	snap := b.snapshotLocked(roomID)
	b.mu.Unlock()

	onSnapshot(snap)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.watchers[roomID], w.id)
			b.mu.Unlock()
		})
	}
	return stop, nil
}

func (f *Fake) Append(ctx context.Context, roomID string, m models.Message) (string, error) {
	b := f.b
	b.mu.Lock()
	b.Appends++
	if b.AppendErr != nil {
		err := b.AppendErr
		b.mu.Unlock()
		return "", err
	}
	if m.Author != f.nickname {
		b.mu.Unlock()
		return "", client.ErrForbidden
	}
	b.nextID++
	m.ID = fmt.Sprintf("msg-%d", b.nextID)
	m.CreatedAt = b.stampLocked()
	m.EditedAt = nil
	b.messages[roomID] = append(b.messages[roomID], m)
	b.mu.Unlock()

	b.Broadcast(roomID)
	return m.ID, nil
}

func (f *Fake) UpdateMessage(ctx context.Context, roomID, messageID string, patch models.MessagePatch) error {
	b := f.b
	b.mu.Lock()
	b.Updates++
	if b.UpdateErr != nil {
		err := b.UpdateErr
		b.mu.Unlock()
		return err
	}

	msgs := b.messages[roomID]
	idx := -1
	for i := range msgs {
		if msgs[i].ID == messageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		return client.ErrNotFound
	}
	if msgs[idx].Author != f.nickname {
		b.mu.Unlock()
		return client.ErrForbidden
	}

	if patch.Text != nil {
		msgs[idx].Text = *patch.Text
	}
	if patch.Deleted != nil {
		msgs[idx].Deleted = *patch.Deleted
	}
	if patch.TouchEdited {
		msgs[idx].EditedAt = b.stampLocked()
	}
	b.mu.Unlock()

	b.Broadcast(roomID)
	return nil
}

func (f *Fake) ExportRoom(ctx context.Context, roomID string) (string, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	if f.b.ExportErr != nil {
		return "", f.b.ExportErr
	}
	return "memory://rooms/" + roomID + ".json", nil
}

func (f *Fake) Close() error {
	f.closed = true
	return nil
}
