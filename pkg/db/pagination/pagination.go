package pagination

import (
	"encoding/base64"
	"encoding/json"
)

// Pagination is the request side of cursor paging, bindable from query
// parameters.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=20" validate:"gte=1,lte=250"`
}

// Cursor marks a position in a listing ordered by (created_at, id).
type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// PageInfo is the response side of cursor paging.
type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

// EncodeCursor serializes a cursor into an opaque page token.
func EncodeCursor(cursor Cursor) (string, error) {
	b, err := json.Marshal(cursor)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeCursor parses an opaque page token back into a cursor.
func DecodeCursor(token string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// BuildCursorPageInfo inspects a result set fetched with limit+1 rows and
// produces the page info for it. The caller trims the extra row.
func BuildCursorPageInfo[T any](rows []*T, limit int32, extractCursor func(*T) string) *PageInfo {
	if len(rows) == 0 {
		return &PageInfo{}
	}

	hasMore := false
	if len(rows) > int(limit) {
		hasMore = true
		rows = rows[:limit]
	}

	return &PageInfo{
		HasMore:       hasMore,
		NextPageToken: extractCursor(rows[len(rows)-1]),
	}
}
