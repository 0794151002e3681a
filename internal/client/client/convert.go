package client

import (
	"github.com/dmitrijs2005/roomchat/internal/client/models"
	"github.com/dmitrijs2005/roomchat/internal/docstorepb"
)

func tsFromDoc(t *docstorepb.Timestamp) *models.Timestamp {
	if t == nil {
		return nil
	}
	return &models.Timestamp{Seconds: t.Seconds, Nanos: t.Nanos}
}

func tsToDoc(t *models.Timestamp) *docstorepb.Timestamp {
	if t == nil {
		return nil
	}
	return &docstorepb.Timestamp{Seconds: t.Seconds, Nanos: t.Nanos}
}

func messageFromDoc(d docstorepb.MessageDoc) models.Message {
	return models.Message{
		ID:        d.ID,
		Text:      d.Text,
		Author:    d.Author,
		ReplyTo:   d.ReplyTo,
		Deleted:   d.Deleted,
		CreatedAt: tsFromDoc(d.CreatedAt),
		EditedAt:  tsFromDoc(d.EditedAt),
	}
}

func messagesFromDocs(docs []docstorepb.MessageDoc) []models.Message {
	out := make([]models.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, messageFromDoc(d))
	}
	return out
}

func messageToDoc(m models.Message) docstorepb.MessageDoc {
	return docstorepb.MessageDoc{
		ID:        m.ID,
		Text:      m.Text,
		Author:    m.Author,
		ReplyTo:   m.ReplyTo,
		Deleted:   m.Deleted,
		CreatedAt: tsToDoc(m.CreatedAt),
		EditedAt:  tsToDoc(m.EditedAt),
	}
}

func roomFromDoc(d docstorepb.RoomDoc) models.Room {
	return models.Room{
		ID:          d.ID,
		HasPasskey:  d.HasPasskey,
		PasskeyHash: d.PasskeyHash,
		PasskeySalt: d.PasskeySalt,
		CreatedAt:   tsFromDoc(d.CreatedAt),
	}
}

func roomToDoc(r models.Room) docstorepb.RoomDoc {
	return docstorepb.RoomDoc{
		ID:          r.ID,
		HasPasskey:  r.HasPasskey,
		PasskeyHash: r.PasskeyHash,
		PasskeySalt: r.PasskeySalt,
		CreatedAt:   tsToDoc(r.CreatedAt),
	}
}
