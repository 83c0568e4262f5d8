package services

import (
	"encoding/base64"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"map-catalog-service/internal/core/domain"
)

type cursorToken struct {
	Sort      domain.SortKey `json:"s"`
	Votes     int            `json:"v"`
	CreatedAt int64          `json:"t"`
	UID       uuid.UUID      `json:"u"`
}

// EncodeCursor renders c as an opaque URL-safe token.
func EncodeCursor(c *domain.Cursor) string {
	if c == nil {
		return ""
	}
	b, err := json.Marshal(cursorToken{
		Sort:      c.Sort,
		Votes:     c.Votes,
		CreatedAt: c.CreatedAt.UnixNano(),
		UID:       c.UID,
	})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses a token produced by EncodeCursor and checks it was
// issued for the same sort.
func DecodeCursor(token string, sort domain.SortKey) (*domain.Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, domain.ErrInvalidCursor
	}
	var t cursorToken
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, domain.ErrInvalidCursor
	}
	if t.Sort != sort {
		return nil, fmt.Errorf("%w: issued for %q sort", domain.ErrInvalidCursor, t.Sort)
	}
	if t.UID == uuid.Nil {
		return nil, domain.ErrInvalidCursor
	}
	return &domain.Cursor{
		Sort:      t.Sort,
		Votes:     t.Votes,
		CreatedAt: time.Unix(0, t.CreatedAt).UTC(),
		UID:       t.UID,
	}, nil
}
