// Package content assembles enriched feed pages and owns the write path
// for posts and comments.
package content

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/picshare/readpath/internal/models"
)

// Cursor is a keyset position in the feed ordering (created_at DESC,
// id DESC). The zero Cursor addresses the first page. Its string form is
// stable and doubles as cache-key material, so two requests for the same
// window always share one cache entry.
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

const firstPage = "head"

func (c Cursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.ID == 0
}

// String renders "head" for the first page, otherwise "<unixnano>-<id>".
func (c Cursor) String() string {
	if c.IsZero() {
		return firstPage
	}
	return strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + "-" + strconv.FormatInt(c.ID, 10)
}

// ParseCursor is the inverse of String. An empty string is accepted as the
// first page.
func ParseCursor(s string) (Cursor, error) {
	if s == "" || s == firstPage {
		return Cursor{}, nil
	}
	nanos, id, ok := strings.Cut(s, "-")
	if !ok {
		return Cursor{}, fmt.Errorf("malformed cursor %q", s)
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("malformed cursor %q: %w", s, err)
	}
	i, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("malformed cursor %q: %w", s, err)
	}
	return Cursor{CreatedAt: time.Unix(0, n), ID: i}, nil
}

// After returns the cursor addressing the page following the given last
// post of a window.
func After(p models.Post) Cursor {
	return Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}
