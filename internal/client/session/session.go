// Package session holds the ephemeral per-view UI state of a room: what the
// user is replying to or editing, which message menu is open, and the input
// draft.
package session

import (
	"strings"
	"sync"
)

// Mode is the compose mode. Replying and editing are mutually exclusive.
type Mode int

const (
	ModeNone Mode = iota
	ModeReplying
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeReplying:
		return "replying"
	case ModeEditing:
		return "editing"
	default:
		return "none"
	}
}

// State is a snapshot of the session.
type State struct {
	Mode Mode

	// TargetID is the message replied to or edited; empty in ModeNone.
	TargetID string

	// MenuID is the message whose action menu is open, independent of Mode.
	MenuID string

	Draft      string
	EditBuffer string

	// Pending holds text handed to an in-flight send.
	Pending    string
	HasPending bool
}

// Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex
	st State
}

func New() *Session { return &Session{} }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.st.Draft = text
	s.mu.Unlock()
}

func (s *Session) SetEditBuffer(text string) {
	s.mu.Lock()
	s.st.EditBuffer = text
	s.mu.Unlock()
}

// OpenMenu opens the action menu of id. Opening the open menu again closes it.
func (s *Session) OpenMenu(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.MenuID == id {
		s.st.MenuID = ""
		return
	}
	s.st.MenuID = id
}

func (s *Session) CloseMenu() {
	s.mu.Lock()
	s.st.MenuID = ""
	s.mu.Unlock()
}

// Reply selects id as reply target, leaving edit mode and closing the menu.
func (s *Session) Reply(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Mode = ModeReplying
	s.st.TargetID = id
	s.st.EditBuffer = ""
	s.st.MenuID = ""
}

// Edit selects id for editing with text prefilled, leaving reply mode and
// closing the menu.
func (s *Session) Edit(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Mode = ModeEditing
	s.st.TargetID = id
	s.st.EditBuffer = text
	s.st.MenuID = ""
}

// Cancel leaves reply or edit mode.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Mode = ModeNone
	s.st.TargetID = ""
	s.st.EditBuffer = ""
}

// Forget drops the whole state, as when leaving a room.
func (s *Session) Forget() {
	s.mu.Lock()
	s.st = State{}
	s.mu.Unlock()
}

// ReplyTarget returns the message being replied to, or "".
func (s *Session) ReplyTarget() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.Mode != ModeReplying {
		return ""
	}
	return s.st.TargetID
}

// EditTarget returns the message being edited and the edit buffer.
func (s *Session) EditTarget() (id, text string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.Mode != ModeEditing {
		return "", "", false
	}
	return s.st.TargetID, s.st.EditBuffer, true
}

// BeginSend moves the draft into the pending buffer and clears the input.
// A whitespace-only draft, or a send already in flight, leaves everything
// untouched and reports ok == false.
func (s *Session) BeginSend() (text, replyTo string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.HasPending || strings.TrimSpace(s.st.Draft) == "" {
		return "", "", false
	}
	s.st.Pending = s.st.Draft
	s.st.HasPending = true
	s.st.Draft = ""
	if s.st.Mode == ModeReplying {
		replyTo = s.st.TargetID
	}
	return s.st.Pending, replyTo, true
}

// CompleteSend drops the pending text and the reply target.
func (s *Session) CompleteSend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Pending = ""
	s.st.HasPending = false
	if s.st.Mode == ModeReplying {
		s.st.Mode = ModeNone
		s.st.TargetID = ""
	}
}

// FailSend puts the pending text back into the input. Anything typed while
// the send was in flight is kept after it.
func (s *Session) FailSend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.st.HasPending {
		return
	}
	if s.st.Draft == "" {
		s.st.Draft = s.st.Pending
	} else {
		s.st.Draft = s.st.Pending + " " + s.st.Draft
	}
	s.st.Pending = ""
	s.st.HasPending = false
}

// CompleteEdit leaves edit mode after a successful edit.
func (s *Session) CompleteEdit() {
	s.Cancel()
}
