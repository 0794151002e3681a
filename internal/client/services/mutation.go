package services

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/roomchat/internal/client/client"
	"github.com/dmitrijs2005/roomchat/internal/client/echostore"
	"github.com/dmitrijs2005/roomchat/internal/client/models"
	"github.com/dmitrijs2005/roomchat/internal/common"
	"github.com/dmitrijs2005/roomchat/internal/logging"
)

// Mutations is the write side of a room: send, edit, delete for everyone and
// delete for me.
//
// Writes go straight to the store; the result comes back only through the
// subscription. The author check here is a courtesy to the user; the server
// enforces ownership against the session nickname.
type Mutations struct {
	client client.Client
	store  *echostore.Store
	logger logging.Logger

	mu       sync.RWMutex
	roomID   string
	nickname string
	decision Decision
}

func NewMutations(c client.Client, store *echostore.Store, logger logging.Logger) *Mutations {
	return &Mutations{
		client:   c,
		store:    store,
		logger:   logger.With("module", "mutations"),
		decision: Pending(),
	}
}

// Bind points the mutations at a room, acting as nickname under gate d.
func (m *Mutations) Bind(roomID, nickname string, d Decision) {
	m.mu.Lock()
	m.roomID, m.nickname, m.decision = roomID, nickname, d
	m.mu.Unlock()
}

// Unbind revokes access until the next Bind.
func (m *Mutations) Unbind() {
	m.Bind("", "", Pending())
}

func (m *Mutations) target() (roomID, nickname string, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.decision.Allowed() || m.roomID == "" {
		return "", "", ErrAccessNotGranted
	}
	return m.roomID, m.nickname, nil
}

// Send appends text as a new message replying to replyTo (may be empty).
// Whitespace-only text is a no-op and reports sent == false.
func (m *Mutations) Send(ctx context.Context, text, replyTo string) (sent bool, err error) {
	roomID, nickname, err := m.target()
	if err != nil {
		return false, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}
	if len(text) > common.MaxMessageLength {
		return false, &MutationError{Op: "send", Err: client.ErrInvalidArgument}
	}

	msg := models.Message{Text: text, Author: nickname, ReplyTo: replyTo}
	id, err := m.client.Append(ctx, roomID, msg)
	if err != nil {
		m.logger.Warn(ctx, "send failed", "room", roomID, "error", err)
		return false, &MutationError{Op: "send", Err: err}
	}

	m.logger.Debug(ctx, "message sent", "room", roomID, "id", id)
	return true, nil
}

// ownMessage loads messageID from the echo store and checks authorship.
func (m *Mutations) ownMessage(messageID, nickname string) (models.Message, error) {
	msg, ok := m.store.Lookup(messageID)
	if !ok {
		return models.Message{}, ErrMessageNotFound
	}
	if msg.Author != nickname {
		return models.Message{}, ErrNotAuthor
	}
	return msg, nil
}

// Edit replaces the text of the caller's own message. Empty or unchanged
// text is a no-op and reports edited == false.
func (m *Mutations) Edit(ctx context.Context, messageID, text string) (edited bool, err error) {
	roomID, nickname, err := m.target()
	if err != nil {
		return false, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}

	msg, err := m.ownMessage(messageID, nickname)
	if err != nil {
		return false, err
	}
	if msg.Deleted {
		return false, ErrMessageDeleted
	}
	if msg.Text == text {
		return false, nil
	}
	if len(text) > common.MaxMessageLength {
		return false, &MutationError{Op: "edit", Err: client.ErrInvalidArgument}
	}

	patch := models.MessagePatch{Text: &text, TouchEdited: true}
	if err := m.client.UpdateMessage(ctx, roomID, messageID, patch); err != nil {
		m.logger.Warn(ctx, "edit failed", "room", roomID, "id", messageID, "error", err)
		return false, &MutationError{Op: "edit", Err: err}
	}
	return true, nil
}

// DeleteForEveryone replaces the caller's own message with the deleted
// placeholder once confirm approves. The record and replies to it stay.
// Deleting an already deleted message writes the same state again.
func (m *Mutations) DeleteForEveryone(ctx context.Context, messageID string, confirm func() bool) error {
	roomID, nickname, err := m.target()
	if err != nil {
		return err
	}

	if _, err := m.ownMessage(messageID, nickname); err != nil {
		return err
	}
	if confirm == nil || !confirm() {
		return ErrNotConfirmed
	}

	text := common.DeletedPlaceholder
	deleted := true
	patch := models.MessagePatch{Text: &text, Deleted: &deleted}
	if err := m.client.UpdateMessage(ctx, roomID, messageID, patch); err != nil {
		m.logger.Warn(ctx, "delete failed", "room", roomID, "id", messageID, "error", err)
		return &MutationError{Op: "delete", Err: err}
	}
	return nil
}

// DeleteForMe hides messageID on this device only. It never calls the
// remote store.
func (m *Mutations) DeleteForMe(ctx context.Context, messageID string) error {
	if _, _, err := m.target(); err != nil {
		return err
	}
	if err := m.store.Hide(ctx, messageID); err != nil {
		return &MutationError{Op: "hide", Err: err}
	}
	return nil
}
