// Package room drives one mounted room view: it resolves the gate, keeps the
// subscription open, routes user actions to the mutation protocol and
// renders a Frame after every change.
package room

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/roomchat/internal/client/client"
	"github.com/dmitrijs2005/roomchat/internal/client/echostore"
	"github.com/dmitrijs2005/roomchat/internal/client/presentation"
	"github.com/dmitrijs2005/roomchat/internal/client/repositories/localstate"
	"github.com/dmitrijs2005/roomchat/internal/client/services"
	"github.com/dmitrijs2005/roomchat/internal/client/session"
	"github.com/dmitrijs2005/roomchat/internal/logging"
)

var (
	ErrNotEditing = errors.New("no message is being edited")
	ErrNoRoom     = errors.New("not in a room")
)

// Frame is everything a renderer needs for one paint.
type Frame struct {
	RoomID   string
	Nickname string
	Gate     services.Decision
	Live     bool

	// StreamErr is the last subscription error while the stream is down.
	StreamErr error

	View    presentation.View
	Scroll  presentation.ScrollAction
	Session session.State

	// Focus is the message "jump to original" wants in view.
	Focus string
}

type Options struct {
	Nickname          string
	ScrollThreshold   int
	HighlightDuration time.Duration

	// Now is the clock of the highlighter. Defaults to time.Now.
	Now func() time.Time

	// OnRender receives every frame. It runs on the goroutine that caused
	// the change and must not call back into the controller.
	OnRender func(Frame)
}

type Controller struct {
	client   client.Client
	logger   logging.Logger
	nickname string
	onRender func(Frame)

	store *echostore.Store
	gate  services.Gate
	sub   *services.Subscription
	mut   *services.Mutations
	sess  *session.Session

	// lifecycle orders subscription open and close between Enter and Leave.
	lifecycle sync.Mutex

	// renderMu serializes paints and guards scroller and focus.
	renderMu    sync.Mutex
	scroller    *presentation.Scroller
	highlighter *presentation.Highlighter
	focus       string

	mu       sync.Mutex
	gen      uint64
	entered  bool
	roomID   string
	passkey  string
	decision services.Decision
	frame    Frame
}

func NewController(c client.Client, repo localstate.Repository, logger logging.Logger, opts Options) *Controller {
	logger = logger.With("module", "room")
	store := echostore.New(repo)

	ctl := &Controller{
		client:   c,
		logger:   logger,
		nickname: opts.Nickname,
		onRender: opts.OnRender,
		store:    store,
		gate:     services.NewGate(c, logger),
		mut:      services.NewMutations(c, store, logger),
		sess:     session.New(),
		scroller: presentation.NewScroller(opts.ScrollThreshold),
		decision: services.Pending(),
	}
	ctl.sub = services.NewSubscription(c, store, logger, ctl.render)
	ctl.highlighter = presentation.NewHighlighter(opts.HighlightDuration, opts.Now, ctl.render)
	return ctl
}

// Enter mounts roomID. The gate runs once per change of room or passkey;
// entering the same room with the same passkey again does nothing. ctx
// bounds the gate call and the lifetime of the subscription.
//
// If another Enter or Leave happens while the gate is resolving, the late
// result is discarded.
func (c *Controller) Enter(ctx context.Context, roomID, passkey string) error {
	c.mu.Lock()
	if c.entered && c.roomID == roomID && c.passkey == passkey {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen := c.gen
	c.entered = true
	c.roomID = roomID
	c.passkey = passkey
	c.decision = services.Pending()
	c.mu.Unlock()

	c.unmount(gen)
	c.render()

	d := c.gate.Resolve(ctx, roomID, passkey)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.logger.Debug(ctx, "stale gate result discarded", "room", roomID, "state", d.State.String())
		return nil
	}
	c.decision = d
	c.mu.Unlock()

	c.logger.Info(ctx, "gate resolved", "room", roomID, "state", d.State.String(), "reason", d.Reason)
	if !d.Allowed() {
		c.render()
		return d.Err()
	}

	c.lifecycle.Lock()
	if c.currentGen() != gen {
		c.lifecycle.Unlock()
		return nil
	}
	if err := c.store.Load(ctx, roomID, c.nickname); err != nil {
		// Retried by the first hide or unhide.
		c.logger.Warn(ctx, "hidden set not loaded", "room", roomID, "error", err)
	}
	c.mut.Bind(roomID, c.nickname, d)
	err := c.sub.Open(ctx, roomID, d)
	c.lifecycle.Unlock()

	c.render()
	return err
}

// Leave unmounts the current room and drops its in-memory state.
func (c *Controller) Leave() {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.entered = false
	c.roomID = ""
	c.passkey = ""
	c.decision = services.Pending()
	c.mu.Unlock()

	c.unmount(gen)
	c.render()
}

// unmount tears down the room of generation gen. A newer Enter or Leave
// has already done it if the generation moved on.
func (c *Controller) unmount(gen uint64) {
	c.lifecycle.Lock()
	if c.currentGen() != gen {
		c.lifecycle.Unlock()
		return
	}
	c.sub.Close()
	c.mut.Unbind()
	c.store.Reset()
	c.lifecycle.Unlock()

	c.sess.Forget()
	c.highlighter.Stop()

	c.renderMu.Lock()
	c.scroller.Reset()
	c.focus = ""
	c.renderMu.Unlock()
}

func (c *Controller) currentGen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *Controller) current() (roomID string, d services.Decision, entered bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID, c.decision, c.entered
}

// Frame returns the last rendered frame.
func (c *Controller) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

func (c *Controller) render() {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	roomID, d, _ := c.current()
	live := c.sub.Live()

	v := presentation.Derive(presentation.Input{
		Gate:        d,
		Live:        live,
		Nickname:    c.nickname,
		Messages:    c.store.Messages(),
		Hidden:      c.store.HiddenSet(),
		HighlightID: c.highlighter.Active(),
	})

	f := Frame{
		RoomID:    roomID,
		Nickname:  c.nickname,
		Gate:      d,
		Live:      live,
		StreamErr: c.sub.Err(),
		View:      v,
		Scroll:    c.scroller.Apply(v),
		Session:   c.sess.State(),
		Focus:     c.focus,
	}
	c.focus = ""

	c.mu.Lock()
	c.frame = f
	c.mu.Unlock()

	if c.onRender != nil {
		c.onRender(f)
	}
}

// SetDraft updates the input text.
func (c *Controller) SetDraft(text string) {
	c.sess.SetDraft(text)
	c.render()
}

// Send sends the draft, replying to the selected target if any. The input
// is cleared right away and restored if the write fails.
func (c *Controller) Send(ctx context.Context) error {
	text, replyTo, ok := c.sess.BeginSend()
	if !ok {
		return nil
	}
	c.render()

	sent, err := c.mut.Send(ctx, text, replyTo)
	if err != nil || !sent {
		c.sess.FailSend()
		c.render()
		return err
	}

	c.sess.CompleteSend()
	c.render()
	return nil
}

// Reply selects messageID as the reply target.
func (c *Controller) Reply(messageID string) error {
	if _, ok := c.store.Lookup(messageID); !ok {
		return services.ErrMessageNotFound
	}
	c.sess.Reply(messageID)
	c.render()
	return nil
}

// StartEdit opens messageID for editing with its current text.
func (c *Controller) StartEdit(messageID string) error {
	msg, ok := c.store.Lookup(messageID)
	if !ok {
		return services.ErrMessageNotFound
	}
	if msg.Author != c.nickname {
		return services.ErrNotAuthor
	}
	if msg.Deleted {
		return services.ErrMessageDeleted
	}
	c.sess.Edit(messageID, msg.Text)
	c.render()
	return nil
}

func (c *Controller) SetEditBuffer(text string) {
	c.sess.SetEditBuffer(text)
	c.render()
}

// SubmitEdit writes the edit buffer. An empty buffer is a no-op; on failure
// the edit stays open.
func (c *Controller) SubmitEdit(ctx context.Context) error {
	id, text, ok := c.sess.EditTarget()
	if !ok {
		return ErrNotEditing
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if _, err := c.mut.Edit(ctx, id, text); err != nil {
		c.render()
		return err
	}

	c.sess.CompleteEdit()
	c.render()
	return nil
}

// Cancel leaves reply or edit mode.
func (c *Controller) Cancel() {
	c.sess.Cancel()
	c.render()
}

// OpenMenu toggles the action menu of messageID.
func (c *Controller) OpenMenu(messageID string) {
	c.sess.OpenMenu(messageID)
	c.render()
}

func (c *Controller) DeleteForEveryone(ctx context.Context, messageID string, confirm func() bool) error {
	c.sess.CloseMenu()
	err := c.mut.DeleteForEveryone(ctx, messageID, confirm)
	c.render()
	return err
}

func (c *Controller) DeleteForMe(ctx context.Context, messageID string) error {
	c.sess.CloseMenu()
	if err := c.attachHidden(ctx); err != nil {
		c.render()
		return &services.MutationError{Op: "hide", Err: err}
	}
	err := c.mut.DeleteForMe(ctx, messageID)
	c.render()
	return err
}

// ResetHidden un-hides every message hidden on this device in the current
// room.
func (c *Controller) ResetHidden(ctx context.Context) error {
	if err := c.attachHidden(ctx); err != nil {
		return err
	}
	if err := c.store.ClearHidden(ctx); err != nil {
		return err
	}
	c.render()
	return nil
}

// attachHidden loads the hidden set of the allowed room if entering could
// not. Without an allowed room it does nothing and the caller reports the
// missing access.
func (c *Controller) attachHidden(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	roomID, d, entered := c.current()
	if !entered || !d.Allowed() || c.store.LoadedRoom() == roomID {
		return nil
	}
	return c.store.Attach(ctx, roomID, c.nickname)
}

// SetScroll reports the viewport distance from the bottom.
func (c *Controller) SetScroll(distanceFromBottom int) {
	c.renderMu.Lock()
	c.scroller.SetDistance(distanceFromBottom)
	c.renderMu.Unlock()
	c.render()
}

// JumpToNewest is the "jump to newest" affordance.
func (c *Controller) JumpToNewest() {
	c.renderMu.Lock()
	c.scroller.JumpToNewest()
	c.renderMu.Unlock()
	c.render()
}

// JumpTo brings messageID into view and highlights it for a while. Hidden
// or unknown messages can't be jumped to.
func (c *Controller) JumpTo(messageID string) error {
	if _, ok := c.store.Lookup(messageID); !ok || c.store.IsHidden(messageID) {
		return services.ErrMessageNotFound
	}
	c.highlighter.Flash(messageID)

	c.renderMu.Lock()
	c.focus = messageID
	c.renderMu.Unlock()
	c.render()
	return nil
}

// Export archives the current room and returns a download URL.
func (c *Controller) Export(ctx context.Context) (string, error) {
	roomID, d, entered := c.current()
	if !entered {
		return "", ErrNoRoom
	}
	if !d.Allowed() {
		return "", services.ErrAccessNotGranted
	}
	url, err := c.client.ExportRoom(ctx, roomID)
	if err != nil {
		return "", &services.MutationError{Op: "export", Err: err}
	}
	return url, nil
}
