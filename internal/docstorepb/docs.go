// Package docstorepb is the wire contract between the roomchat client and the
// document store server.
//
// Documents travel as google.protobuf.Struct values so the store stays
// schema-less on the wire; the typed Go documents below are converted with
// Encode and Decode. Room IDs and export URLs travel as StringValue.
package docstorepb

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Timestamp is a server-assigned instant split like google.protobuf.Timestamp.
// Seconds travels as a decimal string because Struct numbers are doubles.
type Timestamp struct {
	Seconds int64 `json:"seconds,string"`
	Nanos   int32 `json:"nanos"`
}

// RoomDoc is the stored room record. PasskeyHash/PasskeySalt are empty for
// public rooms.
type RoomDoc struct {
	ID          string     `json:"id"`
	HasPasskey  bool       `json:"hasPasskey"`
	PasskeyHash []byte     `json:"passkeyHash,omitempty"`
	PasskeySalt []byte     `json:"passkeySalt,omitempty"`
	CreatedAt   *Timestamp `json:"createdAt,omitempty"`
}

// MessageDoc is one record of a room's message collection.
type MessageDoc struct {
	ID        string     `json:"id,omitempty"`
	Text      string     `json:"text"`
	Author    string     `json:"author"`
	ReplyTo   string     `json:"replyTo,omitempty"`
	Deleted   bool       `json:"deleted"`
	CreatedAt *Timestamp `json:"createdAt,omitempty"`
	EditedAt  *Timestamp `json:"editedAt,omitempty"`
}

type OpenSessionRequest struct {
	Nickname string `json:"nickname"`
}

type OpenSessionResponse struct {
	Token string `json:"token"`
}

type CreateRoomResponse struct {
	Created bool    `json:"created"`
	Room    RoomDoc `json:"room"`
}

type AppendRequest struct {
	RoomID  string     `json:"roomId"`
	Message MessageDoc `json:"message"`
}

// UpdateRequest carries a partial field update. Nil fields are untouched;
// TouchEdited asks the server to stamp editedAt with its own clock.
type UpdateRequest struct {
	RoomID      string  `json:"roomId"`
	MessageID   string  `json:"messageId"`
	Text        *string `json:"text,omitempty"`
	Deleted     *bool   `json:"deleted,omitempty"`
	TouchEdited bool    `json:"touchEdited,omitempty"`
}

// Snapshot is the full ordered content of a room's message collection.
type Snapshot struct {
	RoomID   string       `json:"roomId"`
	Messages []MessageDoc `json:"messages"`
}

// Encode converts a typed document into a Struct.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return s, nil
}

// Decode fills v from a Struct produced by Encode.
//
// Numbers inside a Struct are doubles. Fields that need the full int64
// range are tagged to travel as strings.
func Decode(s *structpb.Struct, v any) error {
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
