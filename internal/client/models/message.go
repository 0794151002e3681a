// Package models defines the client-side chat data models.
package models

import "time"

// Timestamp is a server-assigned instant. A nil *Timestamp on a message means
// the server has not assigned it yet.
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

// FromTime converts t into a Timestamp.
func FromTime(t time.Time) *Timestamp {
	return &Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Time returns the instant as a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanos)).UTC()
}

// Compare orders by seconds, then nanos. It returns -1, 0 or +1.
func (t Timestamp) Compare(o Timestamp) int {
	switch {
	case t.Seconds < o.Seconds:
		return -1
	case t.Seconds > o.Seconds:
		return 1
	case t.Nanos < o.Nanos:
		return -1
	case t.Nanos > o.Nanos:
		return 1
	}
	return 0
}

// Message is one record of a room's message stream.
type Message struct {
	// ID is assigned by the store on append and never changes.
	ID string

	Text   string
	Author string

	// CreatedAt is nil until the store has assigned it.
	CreatedAt *Timestamp

	// ReplyTo references another message in the same room, or is empty.
	ReplyTo string

	// Deleted marks a message deleted for everyone. The record stays and
	// carries the placeholder text.
	Deleted bool

	// EditedAt is set iff Text changed after creation.
	EditedAt *Timestamp
}

// Pending reports whether the server timestamp is still unassigned.
func (m Message) Pending() bool { return m.CreatedAt == nil }

// Edited reports whether the text was changed after creation.
func (m Message) Edited() bool { return m.EditedAt != nil }

// Room is the stored room record.
type Room struct {
	ID         string
	HasPasskey bool

	// PasskeyHash is an argon2id derivation of the passkey with PasskeySalt.
	PasskeyHash []byte
	PasskeySalt []byte

	CreatedAt *Timestamp
}

// MessagePatch is a partial field update. Nil fields are left untouched.
type MessagePatch struct {
	Text    *string
	Deleted *bool

	// TouchEdited asks the store to set EditedAt to its own clock.
	TouchEdited bool
}
