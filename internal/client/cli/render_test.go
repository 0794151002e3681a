package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/roomchat/internal/client/models"
	"github.com/dmitrijs2005/roomchat/internal/client/presentation"
	"github.com/dmitrijs2005/roomchat/internal/client/room"
	"github.com/dmitrijs2005/roomchat/internal/client/services"
	"github.com/dmitrijs2005/roomchat/internal/client/session"
	"github.com/stretchr/testify/assert"
)

func bubbles(n int) []presentation.Bubble {
	out := make([]presentation.Bubble, n)
	for i := range out {
		out[i] = presentation.Bubble{Message: models.Message{
			ID:        "m" + string(rune('a'+i)),
			Text:      "text " + string(rune('a'+i)),
			Author:    "bob",
			CreatedAt: &models.Timestamp{Seconds: int64(1_700_000_000 + i)},
		}}
	}
	return out
}

func TestRenderFrame_Banners(t *testing.T) {
	tests := []struct {
		name  string
		frame room.Frame
		want  string
	}{
		{name: "no room", frame: room.Frame{}, want: "not in a room"},
		{name: "loading", frame: room.Frame{RoomID: "r", View: presentation.View{Banner: presentation.BannerLoading}}, want: "Checking room access"},
		{
			name:  "denied",
			frame: room.Frame{RoomID: "r", View: presentation.View{Banner: presentation.BannerDenied, DeniedReason: services.ReasonWrongPasskey}},
			want:  "Access denied: " + services.ReasonWrongPasskey,
		},
		{name: "connecting", frame: room.Frame{RoomID: "r", View: presentation.View{Banner: presentation.BannerConnecting}}, want: "Connecting..."},
		{name: "empty", frame: room.Frame{RoomID: "r", Live: true, View: presentation.View{Banner: presentation.BannerEmpty}}, want: "No messages yet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, renderFrame(tt.frame, 0, 10), tt.want)
		})
	}
}

func TestRenderFrame_Bubbles(t *testing.T) {
	bs := bubbles(4)
	bs[0].Message.Deleted = true
	bs[1].Message.EditedAt = &models.Timestamp{Seconds: 1_700_000_100}
	bs[1].Own = true
	bs[2].Reply = &presentation.ReplyPreview{ID: "ma", Author: "bob", Text: "This message was deleted", Deleted: true}
	bs[2].Highlighted = true
	bs[3].Message.CreatedAt = nil

	f := room.Frame{
		RoomID:  "lobby",
		Live:    true,
		View:    presentation.View{Banner: presentation.BannerList, Bubbles: bs},
		Session: session.State{MenuID: "mb"},
	}
	out := renderFrame(f, 0, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, "-- #lobby (live) --", lines[0])
	assert.Contains(t, lines[1], "  1. [")
	assert.Contains(t, lines[1], "bob: This message was deleted")
	assert.NotContains(t, lines[1], "text a")
	assert.Contains(t, lines[2], "bob (you): text b (edited)")
	assert.Equal(t, "      /reply /hide /edit /delete  (id mb)", lines[3])
	assert.Equal(t, "      > bob: This message was deleted", lines[4])
	assert.True(t, strings.HasPrefix(lines[5], "*  3. "))
	assert.Contains(t, lines[6], "[--:--] bob: text d (sending)")
}

func TestRenderFrame_WindowAndAffordances(t *testing.T) {
	f := room.Frame{
		RoomID:    "lobby",
		View:      presentation.View{Banner: presentation.BannerList, Bubbles: bubbles(10)},
		Scroll:    presentation.ScrollAction{ShowJump: true},
		StreamErr: errors.New("stream down"),
		Session:   session.State{Mode: session.ModeEditing, TargetID: "mc", EditBuffer: "fixed"},
	}

	out := renderFrame(f, 2, 3)
	assert.Contains(t, out, "-- #lobby (offline) --")
	assert.Contains(t, out, "... 5 earlier")
	assert.Contains(t, out, "  6. [")
	assert.Contains(t, out, "  8. [")
	assert.NotContains(t, out, "  9. [")
	assert.NotContains(t, out, "  5. [")
	assert.Contains(t, out, "! stream down, reconnecting")
	assert.Contains(t, out, "new messages below")
	assert.Contains(t, out, "editing mc: fixed")
}

func TestWindow(t *testing.T) {
	tests := []struct {
		n, offset, height int
		from, to          int
	}{
		{n: 10, offset: 0, height: 3, from: 7, to: 10},
		{n: 10, offset: 8, height: 3, from: 0, to: 2},
		{n: 2, offset: 0, height: 5, from: 0, to: 2},
		{n: 3, offset: 9, height: 5, from: 0, to: 0},
		{n: 4, offset: 0, height: 0, from: 0, to: 4},
	}
	for _, tt := range tests {
		from, to := window(tt.n, tt.offset, tt.height)
		assert.Equal(t, tt.from, from)
		assert.Equal(t, tt.to, to)
	}
}
