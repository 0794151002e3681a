// Package models defines server-side data models persisted in the database.
package models

import "time"

// Room is a chat room record. PasskeyHash and PasskeySalt are empty for
// public rooms.
type Room struct {
	ID          string
	HasPasskey  bool
	PasskeyHash []byte
	PasskeySalt []byte
	CreatedAt   time.Time
}
