package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/roomchat/internal/client/presentation"
	"github.com/dmitrijs2005/roomchat/internal/client/room"
	"github.com/dmitrijs2005/roomchat/internal/client/session"
	"github.com/dmitrijs2005/roomchat/internal/common"
)

const timeLayout = "15:04"

// renderFrame draws one screen. offset is how many messages the viewport is
// scrolled up from the newest; height is how many messages fit.
func renderFrame(f room.Frame, offset, height int) string {
	var b strings.Builder

	if f.RoomID == "" {
		b.WriteString("-- not in a room, /join <room> --\n")
		return b.String()
	}

	live := "offline"
	if f.Live {
		live = "live"
	}
	fmt.Fprintf(&b, "-- #%s (%s) --\n", f.RoomID, live)

	switch f.View.Banner {
	case presentation.BannerLoading:
		b.WriteString("Checking room access...\n")
	case presentation.BannerDenied:
		fmt.Fprintf(&b, "Access denied: %s\n", f.View.DeniedReason)
	case presentation.BannerConnecting:
		b.WriteString("Connecting...\n")
	case presentation.BannerEmpty:
		b.WriteString("No messages yet. Say hi!\n")
	case presentation.BannerList:
		from, to := window(len(f.View.Bubbles), offset, height)
		if from > 0 {
			fmt.Fprintf(&b, "   ... %d earlier\n", from)
		}
		for i := from; i < to; i++ {
			writeBubble(&b, i+1, f.View.Bubbles[i], f.Session.MenuID)
		}
	}

	if f.StreamErr != nil {
		fmt.Fprintf(&b, "! %v, reconnecting\n", f.StreamErr)
	}
	if f.Scroll.ShowJump {
		b.WriteString("-- new messages below, /newest to jump --\n")
	}

	switch f.Session.Mode {
	case session.ModeReplying:
		fmt.Fprintf(&b, "replying to %s (/cancel)\n", f.Session.TargetID)
	case session.ModeEditing:
		fmt.Fprintf(&b, "editing %s: %s (/cancel)\n", f.Session.TargetID, f.Session.EditBuffer)
	}
	if f.Session.HasPending {
		fmt.Fprintf(&b, "sending: %s\n", f.Session.Pending)
	}

	return b.String()
}

func window(n, offset, height int) (from, to int) {
	if height <= 0 {
		height = n
	}
	to = n - offset
	if to < 0 {
		to = 0
	}
	from = to - height
	if from < 0 {
		from = 0
	}
	return from, to
}

func writeBubble(b *strings.Builder, n int, bb presentation.Bubble, menuID string) {
	m := bb.Message

	if bb.Reply != nil {
		fmt.Fprintf(b, "      > %s: %s\n", bb.Reply.Author, bb.Reply.Text)
	}

	stamp := "--:--"
	if m.CreatedAt != nil {
		stamp = m.CreatedAt.Time().Local().Format(timeLayout)
	}

	mark := " "
	if bb.Highlighted {
		mark = "*"
	}

	author := m.Author
	if bb.Own {
		author += " (you)"
	}

	text := m.Text
	switch {
	case m.Deleted:
		text = common.DeletedPlaceholder
	case m.Edited():
		text += " (edited)"
	}
	if m.Pending() {
		text += " (sending)"
	}

	fmt.Fprintf(b, "%s%3d. [%s] %s: %s\n", mark, n, stamp, author, text)

	if menuID != "" && menuID == m.ID {
		actions := "/reply /hide"
		if bb.Own && !m.Deleted {
			actions += " /edit /delete"
		}
		fmt.Fprintf(b, "      %s  (id %s)\n", actions, m.ID)
	}
}
