package localstate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// HiddenKey is the storage key of the hidden set for (roomID, nickname).
// Both parts are path-escaped so a "/" in either can't collide with another
// pair.
func HiddenKey(roomID, nickname string) string {
	return "hidden/" + url.PathEscape(roomID) + "/" + url.PathEscape(nickname)
}

// LoadHidden reads the hidden message IDs stored for (roomID, nickname).
// A missing entry is an empty set.
func LoadHidden(ctx context.Context, r Repository, roomID, nickname string) ([]string, error) {
	b, err := r.Get(ctx, HiddenKey(roomID, nickname))
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, fmt.Errorf("decode hidden set: %w", err)
	}
	return ids, nil
}

// SaveHidden stores ids as a JSON array for (roomID, nickname).
func SaveHidden(ctx context.Context, r Repository, roomID, nickname string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode hidden set: %w", err)
	}
	return r.Set(ctx, HiddenKey(roomID, nickname), b)
}

// ClearHidden drops the hidden set for (roomID, nickname).
func ClearHidden(ctx context.Context, r Repository, roomID, nickname string) error {
	return r.Delete(ctx, HiddenKey(roomID, nickname))
}
