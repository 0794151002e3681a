package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestamp_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Timestamp
		want int
	}{
		{"equal", Timestamp{10, 5}, Timestamp{10, 5}, 0},
		{"seconds less", Timestamp{9, 999}, Timestamp{10, 0}, -1},
		{"seconds greater", Timestamp{11, 0}, Timestamp{10, 999}, 1},
		{"nanos break tie", Timestamp{10, 1}, Timestamp{10, 2}, -1},
		{"nanos greater", Timestamp{10, 3}, Timestamp{10, 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}
}

func TestTimestamp_TimeRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 30, 0, 123456789, time.UTC)
	ts := FromTime(at)
	assert.Equal(t, int64(at.Unix()), ts.Seconds)
	assert.Equal(t, int32(123456789), ts.Nanos)
	assert.True(t, at.Equal(ts.Time()))
}

func TestMessage_PendingAndEdited(t *testing.T) {
	m := Message{ID: "m1"}
	assert.True(t, m.Pending())
	assert.False(t, m.Edited())

	m.CreatedAt = &Timestamp{Seconds: 1}
	m.EditedAt = &Timestamp{Seconds: 2}
	assert.False(t, m.Pending())
	assert.True(t, m.Edited())
}
