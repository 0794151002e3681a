package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/roomchat/internal/client/client"
	"github.com/dmitrijs2005/roomchat/internal/client/client/clienttest"
	"github.com/dmitrijs2005/roomchat/internal/client/echostore"
	"github.com/dmitrijs2005/roomchat/internal/common"
	"github.com/dmitrijs2005/roomchat/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yes() bool { return true }

func TestMutations_RequireAllowedGate(t *testing.T) {
	ctx := context.Background()
	b := clienttest.NewBackend()
	m := NewMutations(b.Session("ann"), echostore.New(newMemRepo()), logging.Nop())

	_, err := m.Send(ctx, "hi", "")
	require.ErrorIs(t, err, ErrAccessNotGranted)
	_, err = m.Edit(ctx, "m1", "x")
	require.ErrorIs(t, err, ErrAccessNotGranted)
	require.ErrorIs(t, m.DeleteForEveryone(ctx, "m1", yes), ErrAccessNotGranted)
	require.ErrorIs(t, m.DeleteForMe(ctx, "m1"), ErrAccessNotGranted)

	m.Bind("r1", "ann", Denied(ReasonWrongPasskey))
	_, err = m.Send(ctx, "hi", "")
	require.ErrorIs(t, err, ErrAccessNotGranted)

	m.Bind("r1", "ann", Allowed())
	m.Unbind()
	_, err = m.Send(ctx, "hi", "")
	require.ErrorIs(t, err, ErrAccessNotGranted)

	assert.Equal(t, 0, b.Appends)
	assert.Equal(t, 0, b.Updates)
}

func TestSend_WhitespaceIsNoop(t *testing.T) {
	b := clienttest.NewBackend()
	ann := join(t, b, newMemRepo(), "r1", "ann")

	for _, text := range []string{"", "   ", "\t\n "} {
		sent, err := ann.mut.Send(context.Background(), text, "")
		require.NoError(t, err)
		assert.False(t, sent)
	}
	assert.Equal(t, 0, b.Appends)
}

func TestSend_AppendsTrimmedAndArrivesOnlyViaSubscription(t *testing.T) {
	ctx := context.Background()
	b := clienttest.NewBackend()

	// Not subscribed: the sender's store must stay empty after a send.
	store := echostore.New(newMemRepo())
	m := NewMutations(b.Session("ann"), store, logging.Nop())
	m.Bind("r1", "ann", Allowed())

	sent, err := m.Send(ctx, "  hi  ", "")
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 0, store.Len())

	stored := b.Messages("r1")
	require.Len(t, stored, 1)
	assert.Equal(t, "hi", stored[0].Text)
	assert.Equal(t, "ann", stored[0].Author)
	assert.False(t, stored[0].Deleted)
	assert.NotNil(t, stored[0].CreatedAt)

	// Subscribed: it arrives with the next snapshot.
	ann := join(t, b, newMemRepo(), "r1", "ann")
	_, err = ann.mut.Send(ctx, "again", stored[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, ann.store.Len())
	got, ok := ann.store.Lookup(b.Messages("r1")[1].ID)
	require.True(t, ok)
	assert.Equal(t, stored[0].ID, got.ReplyTo)
}

func TestSend_FailureIsMutationError(t *testing.T) {
	b := clienttest.NewBackend()
	ann := join(t, b, newMemRepo(), "r1", "ann")
	b.AppendErr = client.ErrUnavailable

	sent, err := ann.mut.Send(context.Background(), "hi", "")
	assert.False(t, sent)
	var merr *MutationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "send", merr.Op)
	assert.ErrorIs(t, err, client.ErrUnavailable)
}

func TestSend_TooLong(t *testing.T) {
	b := clienttest.NewBackend()
	ann := join(t, b, newMemRepo(), "r1", "ann")

	_, err := ann.mut.Send(context.Background(), strings.Repeat("x", common.MaxMessageLength+1), "")
	require.ErrorIs(t, err, client.ErrInvalidArgument)
	assert.Equal(t, 0, b.Appends)
}

func TestEdit_NeverChangesIdentity(t *testing.T) {
	ctx := context.Background()
	b := clienttest.NewBackend()
	repo := newMemRepo()
	ann := join(t, b, repo, "r1", "ann")

	_, err := ann.mut.Send(ctx, "root", "")
	require.NoError(t, err)
	rootID := ann.store.Messages()[0].ID
	_, err = ann.mut.Send(ctx, "first", rootID)
	require.NoError(t, err)
	original := ann.store.Messages()[1]
	require.Nil(t, original.EditedAt)

	for _, text := range []string{"second", "third", " fourth "} {
		edited, err := ann.mut.Edit(ctx, original.ID, text)
		require.NoError(t, err)
		assert.True(t, edited)

		got, ok := ann.store.Lookup(original.ID)
		require.True(t, ok)
		assert.Equal(t, original.ID, got.ID)
		assert.Equal(t, original.Author, got.Author)
		assert.Equal(t, *original.CreatedAt, *got.CreatedAt)
		assert.Equal(t, rootID, got.ReplyTo)
		assert.Equal(t, strings.TrimSpace(text), got.Text)
		assert.NotNil(t, got.EditedAt)
	}
}

func TestEdit_NoopsAndRejections(t *testing.T) {
	ctx := context.Background()
	b := clienttest.NewBackend()
	repo := newMemRepo()
	ann := join(t, b, repo, "r1", "ann")
	bob := join(t, b, repo, "r1", "bob")

	_, err := ann.mut.Send(ctx, "hi", "")
	require.NoError(t, err)
	id := ann.store.Messages()[0].ID
	updates := b.Updates

	edited, err := ann.mut.Edit(ctx, id, "   ")
	require.NoError(t, err)
	assert.False(t, edited)

	edited, err = ann.mut.Edit(ctx, id, "hi")
	require.NoError(t, err)
	assert.False(t, edited, "unchanged text keeps EditedAt unset")

	_, err = bob.mut.Edit(ctx, id, "hijacked")
	require.ErrorIs(t, err, ErrNotAuthor)

	_, err = ann.mut.Edit(ctx, "missing", "x")
	require.ErrorIs(t, err, ErrMessageNotFound)

	assert.Equal(t, updates, b.Updates)
	got, _ := ann.store.Lookup(id)
	assert.Nil(t, got.EditedAt)

	require.NoError(t, ann.mut.DeleteForEveryone(ctx, id, yes))
	_, err = ann.mut.Edit(ctx, id, "back from the dead")
	require.ErrorIs(t, err, ErrMessageDeleted)
}

func TestEdit_FailureIsMutationError(t *testing.T) {
	ctx := context.Background()
	b := clienttest.NewBackend()
	ann := join(t, b, newMemRepo(), "r1", "ann")
	_, err := ann.mut.Send(ctx, "hi", "")
	require.NoError(t, err)
	id := ann.store.Messages()[0].ID

	b.UpdateErr = client.ErrUnavailable
	_, err = ann.mut.Edit(ctx, id, "changed")
	var merr *MutationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "edit", merr.Op)

	got, _ := ann.store.Lookup(id)
	assert.Equal(t, "hi", got.Text)
}

func TestDeleteForEveryone_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	b := clienttest.NewBackend()
	ann := join(t, b, newMemRepo(), "r1", "ann")
	_, err := ann.mut.Send(ctx, "oops", "")
	require.NoError(t, err)
	id := ann.store.Messages()[0].ID

	require.NoError(t, ann.mut.DeleteForEveryone(ctx, id, yes))
	once, _ := ann.store.Lookup(id)

	require.NoError(t, ann.mut.DeleteForEveryone(ctx, id, yes))
	twice, _ := ann.store.Lookup(id)

	assert.Equal(t, once, twice)
	assert.True(t, twice.Deleted)
	assert.Equal(t, common.DeletedPlaceholder, twice.Text)
	assert.Nil(t, twice.EditedAt)
	assert.Len(t, b.Messages("r1"), 1, "the record is never removed")
}

func TestDeleteForEveryone_RequiresConfirmationAndAuthorship(t *testing.T) {
	ctx := context.Background()
	b := clienttest.NewBackend()
	repo := newMemRepo()
	ann := join(t, b, repo, "r1", "ann")
	bob := join(t, b, repo, "r1", "bob")
	_, err := ann.mut.Send(ctx, "hi", "")
	require.NoError(t, err)
	id := ann.store.Messages()[0].ID

	require.ErrorIs(t, ann.mut.DeleteForEveryone(ctx, id, func() bool { return false }), ErrNotConfirmed)
	require.ErrorIs(t, ann.mut.DeleteForEveryone(ctx, id, nil), ErrNotConfirmed)

	asked := false
	err = bob.mut.DeleteForEveryone(ctx, id, func() bool { asked = true; return true })
	require.ErrorIs(t, err, ErrNotAuthor)
	assert.False(t, asked, "authorship is checked before asking")

	assert.Equal(t, 0, b.Updates)
}

func TestDeleteForMe_LocalOnlyAndPerDevice(t *testing.T) {
	ctx := context.Background()
	b := clienttest.NewBackend()
	repo := newMemRepo()
	ann := join(t, b, repo, "r1", "ann")
	bob := join(t, b, repo, "r1", "bob")
	_, err := bob.mut.Send(ctx, "spam", "")
	require.NoError(t, err)
	id := bob.store.Messages()[0].ID

	appends, updates, reads := b.Appends, b.Updates, b.Reads
	require.NoError(t, ann.mut.DeleteForMe(ctx, id))
	require.NoError(t, ann.mut.DeleteForMe(ctx, id))

	assert.Equal(t, appends, b.Appends)
	assert.Equal(t, updates, b.Updates)
	assert.Equal(t, reads, b.Reads)

	assert.True(t, ann.store.IsHidden(id))
	assert.False(t, bob.store.IsHidden(id))
	assert.Equal(t, []string{id}, ann.store.Hidden())

	stored := b.Messages("r1")
	require.Len(t, stored, 1)
	assert.False(t, stored[0].Deleted)
}
