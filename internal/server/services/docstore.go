// Package services contains the server-side business logic: the room
// document store, change fan-out, session issuing and transcript export.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/roomchat/internal/common"
	"github.com/dmitrijs2005/roomchat/internal/logging"
	"github.com/dmitrijs2005/roomchat/internal/server/metrics"
	"github.com/dmitrijs2005/roomchat/internal/server/models"
	"github.com/dmitrijs2005/roomchat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/roomchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/roomchat/internal/server/repositories/rooms"
	"github.com/google/uuid"
)

// MaxRoomIDLength bounds room identifiers, in bytes.
const MaxRoomIDLength = 128

// Notifier announces that a room's messages changed.
type Notifier interface {
	Notify(ctx context.Context, roomID string) error
}

// DocStore owns rooms and their message collections.
//
// Writes are checked against the caller's session nickname: an appended
// message must carry it as author, and only the stored author may update a
// message. Creation timestamps are assigned here and strictly increase
// within a room.
type DocStore struct {
	repos    repomanager.RepositoryManager
	hub      *Hub
	notifier Notifier
	metrics  *metrics.Metrics
	logger   logging.Logger

	now   func() time.Time
	newID func() string
}

type DocStoreOption func(*DocStore)

// WithNotifier replaces the default notifier, which publishes to the hub
// directly.
func WithNotifier(n Notifier) DocStoreOption {
	return func(s *DocStore) { s.notifier = n }
}

func WithMetrics(m *metrics.Metrics) DocStoreOption {
	return func(s *DocStore) { s.metrics = m }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) DocStoreOption {
	return func(s *DocStore) { s.now = now }
}

func NewDocStore(repos repomanager.RepositoryManager, hub *Hub, logger logging.Logger, opts ...DocStoreOption) *DocStore {
	s := &DocStore{
		repos:    repos,
		hub:      hub,
		notifier: hub,
		logger:   logger.With("module", "docstore"),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func validateRoomID(roomID string) error {
	if strings.TrimSpace(roomID) == "" {
		return fmt.Errorf("%w: empty room id", common.ErrorValidation)
	}
	if len(roomID) > MaxRoomIDLength {
		return fmt.Errorf("%w: room id too long", common.ErrorValidation)
	}
	return nil
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty text", common.ErrorValidation)
	}
	if len(text) > common.MaxMessageLength {
		return fmt.Errorf("%w: text longer than %d bytes", common.ErrorValidation, common.MaxMessageLength)
	}
	return nil
}

// stamp returns the current time at database precision.
func (s *DocStore) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// nextCreatedAt is the creation timestamp for a message following last.
func nextCreatedAt(now, last time.Time) time.Time {
	if now.After(last) {
		return now
	}
	return last.Add(time.Microsecond)
}

func (s *DocStore) ReadRoom(ctx context.Context, roomID string) (*models.Room, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}
	return s.repos.Rooms().Get(ctx, roomID)
}

// CreateRoomIfAbsent stores room unless one with its id exists, and returns
// the stored record. Of concurrent creators exactly one gets created ==
// true; the others get the winner's record.
func (s *DocStore) CreateRoomIfAbsent(ctx context.Context, room models.Room) (*models.Room, bool, error) {
	if err := validateRoomID(room.ID); err != nil {
		return nil, false, err
	}
	if room.HasPasskey && (len(room.PasskeyHash) == 0 || len(room.PasskeySalt) == 0) {
		return nil, false, fmt.Errorf("%w: protected room without passkey hash", common.ErrorValidation)
	}
	if !room.HasPasskey {
		room.PasskeyHash, room.PasskeySalt = nil, nil
	}
	room.CreatedAt = s.stamp()

	stored, created, err := s.repos.Rooms().CreateIfAbsent(ctx, &room)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Info(ctx, "room created", "room", room.ID, "protected", room.HasPasskey)
	}
	return stored, created, nil
}

// Append stores m as a new message of roomID on behalf of actor and returns
// the stored record with its server-assigned ID and timestamp.
func (s *DocStore) Append(ctx context.Context, actor, roomID string, m models.Message) (*models.Message, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}
	if err := validateText(m.Text); err != nil {
		return nil, err
	}
	if m.Deleted {
		return nil, fmt.Errorf("%w: new message marked deleted", common.ErrorValidation)
	}
	if actor == "" || m.Author != actor {
		return nil, fmt.Errorf("%w: author must be the session nickname", common.ErrorForbidden)
	}

	stored := models.Message{
		ID:      s.newID(),
		RoomID:  roomID,
		Text:    m.Text,
		Author:  actor,
		ReplyTo: m.ReplyTo,
	}

	err := s.repos.InTx(ctx, func(ctx context.Context, rr rooms.Repository, mr messages.Repository) error {
		if _, err := rr.Get(ctx, roomID); err != nil {
			return err
		}
		if err := mr.LockRoom(ctx, roomID); err != nil {
			return err
		}
		last, err := mr.LastCreatedAt(ctx, roomID)
		if err != nil {
			return err
		}
		stored.CreatedAt = nextCreatedAt(s.stamp(), last)
		return mr.Create(ctx, &stored)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.MessageAppended()
	s.announce(ctx, roomID)
	s.logger.Debug(ctx, "message appended", "room", roomID, "id", stored.ID, "author", actor)
	return &stored, nil
}

// UpdateMessage applies patch to message messageID of roomID on behalf of
// actor, who must be its author. Deleted messages stay deleted; the only
// update they accept is another deletion.
func (s *DocStore) UpdateMessage(ctx context.Context, actor, roomID, messageID string, patch models.MessagePatch) (*models.Message, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}
	if messageID == "" {
		return nil, fmt.Errorf("%w: empty message id", common.ErrorValidation)
	}
	if patch.Text == nil && patch.Deleted == nil && !patch.TouchEdited {
		return nil, fmt.Errorf("%w: empty update", common.ErrorValidation)
	}
	if patch.Text != nil {
		if err := validateText(*patch.Text); err != nil {
			return nil, err
		}
	}

	var updated models.Message
	err := s.repos.InTx(ctx, func(ctx context.Context, _ rooms.Repository, mr messages.Repository) error {
		cur, err := mr.Get(ctx, roomID, messageID)
		if err != nil {
			return err
		}
		if actor == "" || cur.Author != actor {
			return fmt.Errorf("%w: only the author may change a message", common.ErrorForbidden)
		}
		if cur.Deleted && (patch.Deleted == nil || !*patch.Deleted) {
			return fmt.Errorf("%w: message is deleted", common.ErrorValidation)
		}

		if patch.Text != nil {
			cur.Text = *patch.Text
		}
		if patch.Deleted != nil {
			cur.Deleted = *patch.Deleted
		}
		if patch.TouchEdited {
			t := s.stamp()
			cur.EditedAt = &t
		}
		updated = *cur
		return mr.Update(ctx, cur)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.MessageUpdated()
	s.announce(ctx, roomID)
	s.logger.Debug(ctx, "message updated", "room", roomID, "id", messageID, "deleted", updated.Deleted)
	return &updated, nil
}

// announce failures are logged only: the write itself succeeded, and
// watchers catch up on the next change.
func (s *DocStore) announce(ctx context.Context, roomID string) {
	if err := s.notifier.Notify(ctx, roomID); err != nil {
		s.logger.Warn(ctx, "change notification failed", "room", roomID, "error", err)
	}
}

// Snapshot returns the room's messages ordered by creation timestamp. An
// unknown room has no messages.
func (s *DocStore) Snapshot(ctx context.Context, roomID string) ([]models.Message, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}
	return s.repos.Messages().ListByRoom(ctx, roomID)
}

// Watch calls send with the current snapshot of roomID and again after
// every change, until ctx is done or send fails. Changes that land while
// send runs are folded into one follow-up snapshot.
func (s *DocStore) Watch(ctx context.Context, roomID string, send func([]models.Message) error) error {
	if err := validateRoomID(roomID); err != nil {
		return err
	}

	signals, cancel := s.hub.Subscribe(roomID)
	defer cancel()

	s.metrics.WatchStarted()
	defer s.metrics.WatchEnded()

	for {
		msgs, err := s.Snapshot(ctx, roomID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := send(msgs); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-signals:
		}
	}
}
