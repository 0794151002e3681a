package models

import "time"

// Message is one record of a room's message collection. ID, RoomID, Author,
// ReplyTo and CreatedAt never change after the insert.
type Message struct {
	ID        string
	RoomID    string
	Text      string
	Author    string
	ReplyTo   string
	Deleted   bool
	CreatedAt time.Time
	EditedAt  *time.Time
}

// MessagePatch is a partial update. Nil fields are left alone; TouchEdited
// stamps EditedAt with the server clock.
type MessagePatch struct {
	Text        *string
	Deleted     *bool
	TouchEdited bool
}
