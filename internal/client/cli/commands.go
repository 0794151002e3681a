package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/roomchat/internal/client/room"
	"github.com/dmitrijs2005/roomchat/internal/client/services"
	"github.com/dmitrijs2005/roomchat/internal/client/session"
	"github.com/dmitrijs2005/roomchat/internal/netx"
)

var (
	ErrUsage   = errors.New("usage")
	ErrNoReply = errors.New("message is not a reply")
)

// promptPasskey is a test seam for GetPasskey.
var promptPasskey = func() (string, error) { return GetPasskey(os.Stdout) }

// resolveRef turns a listing number or a message ID into a message ID.
func resolveRef(f room.Frame, ref string) (string, error) {
	if ref == "" {
		return "", ErrUsage
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(f.View.Bubbles) {
			return "", services.ErrMessageNotFound
		}
		return f.View.Bubbles[n-1].Message.ID, nil
	}
	if f.View.Index(ref) < 0 {
		return "", services.ErrMessageNotFound
	}
	return ref, nil
}

func (a *App) ref(ref string) (string, error) {
	return resolveRef(a.room.Frame(), ref)
}

func (a *App) resetOffset() {
	a.mu.Lock()
	a.offset = 0
	a.mu.Unlock()
}

// Join enters room. With prompt set the passkey is read from the terminal.
func (a *App) Join(ctx context.Context, roomID, passkey string, prompt bool) error {
	if prompt {
		pk, err := promptPasskey()
		if err != nil {
			return err
		}
		passkey = pk
	}
	a.resetOffset()
	return a.room.Enter(ctx, roomID, passkey)
}

func (a *App) Leave(ctx context.Context) error {
	a.resetOffset()
	a.room.Leave()
	return nil
}

// Say handles a plain input line: it submits the edit buffer in edit mode
// and sends a message otherwise.
func (a *App) Say(ctx context.Context, text string) error {
	if a.room.Frame().Session.Mode == session.ModeEditing {
		a.room.SetEditBuffer(text)
		return a.room.SubmitEdit(ctx)
	}
	a.room.SetDraft(text)
	return a.room.Send(ctx)
}

func (a *App) Reply(ctx context.Context, ref string) error {
	id, err := a.ref(ref)
	if err != nil {
		return err
	}
	return a.room.Reply(id)
}

// Edit opens ref for editing. Non-empty text is submitted right away.
func (a *App) Edit(ctx context.Context, ref, text string) error {
	id, err := a.ref(ref)
	if err != nil {
		return err
	}
	if err := a.room.StartEdit(id); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	a.room.SetEditBuffer(text)
	return a.room.SubmitEdit(ctx)
}

func (a *App) Cancel(ctx context.Context) error {
	a.room.Cancel()
	return nil
}

func (a *App) Delete(ctx context.Context, ref string, confirm func() bool) error {
	id, err := a.ref(ref)
	if err != nil {
		return err
	}
	return a.room.DeleteForEveryone(ctx, id, confirm)
}

func (a *App) Hide(ctx context.Context, ref string) error {
	id, err := a.ref(ref)
	if err != nil {
		return err
	}
	return a.room.DeleteForMe(ctx, id)
}

func (a *App) UnhideAll(ctx context.Context) error {
	return a.room.ResetHidden(ctx)
}

func (a *App) Menu(ctx context.Context, ref string) error {
	id, err := a.ref(ref)
	if err != nil {
		return err
	}
	a.room.OpenMenu(id)
	return nil
}

// JumpToOriginal scrolls to the message that ref replies to and flashes it.
func (a *App) JumpToOriginal(ctx context.Context, ref string) error {
	id, err := a.ref(ref)
	if err != nil {
		return err
	}
	f := a.room.Frame()
	bubble := f.View.Bubbles[f.View.Index(id)]
	if bubble.Reply == nil {
		return ErrNoReply
	}
	if err := a.room.JumpTo(bubble.Reply.ID); err != nil {
		return err
	}

	f = a.room.Frame()
	idx := f.View.Index(bubble.Reply.ID)
	if idx < 0 {
		return nil
	}
	offset := len(f.View.Bubbles) - 1 - idx - a.config.ViewportHeight/2
	if offset < 0 {
		offset = 0
	}
	a.scrollTo(offset)
	return nil
}

func (a *App) Newest(ctx context.Context) error {
	a.resetOffset()
	a.room.JumpToNewest()
	return nil
}

// Scroll moves the viewport by delta messages; positive is up.
func (a *App) Scroll(ctx context.Context, delta int) error {
	a.mu.Lock()
	offset := a.offset + delta
	a.mu.Unlock()
	a.scrollTo(offset)
	return nil
}

func (a *App) scrollTo(offset int) {
	n := len(a.room.Frame().View.Bubbles)
	if offset > n-1 {
		offset = n - 1
	}
	if offset < 0 {
		offset = 0
	}
	a.mu.Lock()
	a.offset = offset
	a.mu.Unlock()
	a.room.SetScroll(offset)
}

// Export archives the room and prints the link. With a path the transcript
// is also downloaded there.
func (a *App) Export(ctx context.Context, path string) error {
	url, err := a.room.Export(ctx)
	if err != nil {
		return err
	}
	printlnFn("Transcript:", url)
	if path == "" {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := netx.DownloadFromPresignedURL(ctx, url, f)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Saved %d bytes to %s", n, path))
	return nil
}

// Show redraws the current frame.
func (a *App) Show(ctx context.Context) error {
	f := a.room.Frame()
	a.mu.Lock()
	text := renderFrame(f, a.offset, a.config.ViewportHeight)
	a.lastOut = text
	a.mu.Unlock()
	fmt.Fprint(a.out, text)
	return nil
}
