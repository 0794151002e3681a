package grpc

import (
	"time"

	"github.com/dmitrijs2005/roomchat/internal/docstorepb"
	"github.com/dmitrijs2005/roomchat/internal/server/models"
)

func toTimestamp(t time.Time) *docstorepb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return &docstorepb.Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

func roomToDoc(r *models.Room) docstorepb.RoomDoc {
	return docstorepb.RoomDoc{
		ID:          r.ID,
		HasPasskey:  r.HasPasskey,
		PasskeyHash: r.PasskeyHash,
		PasskeySalt: r.PasskeySalt,
		CreatedAt:   toTimestamp(r.CreatedAt),
	}
}

func roomFromDoc(d docstorepb.RoomDoc) models.Room {
	return models.Room{
		ID:          d.ID,
		HasPasskey:  d.HasPasskey,
		PasskeyHash: d.PasskeyHash,
		PasskeySalt: d.PasskeySalt,
	}
}

func messageToDoc(m models.Message) docstorepb.MessageDoc {
	d := docstorepb.MessageDoc{
		ID:        m.ID,
		Text:      m.Text,
		Author:    m.Author,
		ReplyTo:   m.ReplyTo,
		Deleted:   m.Deleted,
		CreatedAt: toTimestamp(m.CreatedAt),
	}
	if m.EditedAt != nil {
		d.EditedAt = toTimestamp(*m.EditedAt)
	}
	return d
}

// messageFromDoc keeps only the fields a client may choose.
func messageFromDoc(d docstorepb.MessageDoc) models.Message {
	return models.Message{
		Text:    d.Text,
		Author:  d.Author,
		ReplyTo: d.ReplyTo,
		Deleted: d.Deleted,
	}
}

func messagesToDocs(msgs []models.Message) []docstorepb.MessageDoc {
	out := make([]docstorepb.MessageDoc, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageToDoc(m))
	}
	return out
}
