// Package presentation derives what a room view shows from the echo store,
// the gate decision and the connection state, and decides when new data may
// move the viewport.
package presentation

import (
	"sort"

	"github.com/dmitrijs2005/roomchat/internal/client/models"
	"github.com/dmitrijs2005/roomchat/internal/client/services"
	"github.com/dmitrijs2005/roomchat/internal/common"
)

type Banner int

const (
	BannerLoading Banner = iota
	BannerDenied
	BannerConnecting
	BannerEmpty
	BannerList
)

func (b Banner) String() string {
	switch b {
	case BannerLoading:
		return "loading"
	case BannerDenied:
		return "denied"
	case BannerConnecting:
		return "connecting"
	case BannerEmpty:
		return "empty"
	case BannerList:
		return "list"
	default:
		return "unknown"
	}
}

// ReplyPreview is the quoted target shown above a reply.
type ReplyPreview struct {
	ID      string
	Author  string
	Text    string
	Deleted bool
}

type Bubble struct {
	Message     models.Message
	Own         bool
	Reply       *ReplyPreview
	Highlighted bool
}

type Input struct {
	Gate     services.Decision
	Live     bool
	Nickname string

	// Messages is the unfiltered message set in any order.
	Messages []models.Message
	Hidden   map[string]struct{}

	// HighlightID is the message currently flashed by "jump to original".
	HighlightID string
}

type View struct {
	Banner Banner

	// DeniedReason is set with BannerDenied.
	DeniedReason string

	// Bubbles is ordered oldest first. It is empty unless Banner is
	// BannerList.
	Bubbles []Bubble
}

// Newest returns the last bubble of the list.
func (v View) Newest() (Bubble, bool) {
	if len(v.Bubbles) == 0 {
		return Bubble{}, false
	}
	return v.Bubbles[len(v.Bubbles)-1], true
}

// Index returns the position of message id in the list, or -1.
func (v View) Index(id string) int {
	for i, b := range v.Bubbles {
		if b.Message.ID == id {
			return i
		}
	}
	return -1
}

// Derive computes the view. It has no side effects.
func Derive(in Input) View {
	switch in.Gate.State {
	case services.GatePending:
		return View{Banner: BannerLoading}
	case services.GateDenied:
		return View{Banner: BannerDenied, DeniedReason: in.Gate.Reason}
	}

	visible := Visible(in.Messages, in.Hidden)
	if len(visible) == 0 {
		if in.Live {
			return View{Banner: BannerEmpty}
		}
		return View{Banner: BannerConnecting}
	}

	byID := make(map[string]models.Message, len(in.Messages))
	for _, m := range in.Messages {
		byID[m.ID] = m
	}

	bubbles := make([]Bubble, 0, len(visible))
	for _, m := range visible {
		b := Bubble{
			Message:     m,
			Own:         m.Author == in.Nickname,
			Highlighted: in.HighlightID != "" && m.ID == in.HighlightID,
		}
		if m.ReplyTo != "" {
			if target, ok := byID[m.ReplyTo]; ok {
				b.Reply = preview(target)
			}
		}
		bubbles = append(bubbles, b)
	}

	return View{Banner: BannerList, Bubbles: bubbles}
}

// Visible drops hidden messages and sorts the rest with SortMessages.
func Visible(msgs []models.Message, hidden map[string]struct{}) []models.Message {
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := hidden[m.ID]; ok {
			continue
		}
		out = append(out, m)
	}
	SortMessages(out)
	return out
}

// SortMessages orders by creation timestamp, seconds then nanos. Messages
// still waiting for a server timestamp go last, keeping their relative
// order; they move into place once the timestamp lands. They are not
// treated as equal to their neighbours. The server stamps every message it
// stores, so snapshots never carry one.
func SortMessages(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		a, b := msgs[i].CreatedAt, msgs[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Compare(*b) < 0
	})
}

func preview(target models.Message) *ReplyPreview {
	p := &ReplyPreview{ID: target.ID, Author: target.Author, Text: target.Text, Deleted: target.Deleted}
	if target.Deleted {
		p.Text = common.DeletedPlaceholder
	}
	return p
}
