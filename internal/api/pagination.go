package api

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/roster-api/internal/domain"
	"github.com/phrazzld/roster-api/internal/store"
)

// Pagination bounds. per_page defaults to 20 and is capped at 100;
// unpaginated listings are not offered.
const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// parseListParams reads pagination query parameters. Either page/per_page
// or a keyset cursor may be supplied; the cursor wins when both are
// present. Returns a ValidationError on malformed input.
func parseListParams(r *http.Request) (store.ListUsersParams, int, error) {
	q := r.URL.Query()

	perPage := defaultPerPage
	if raw := q.Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return store.ListUsersParams{}, 0,
				domain.NewValidationError("per_page", "must be a positive integer")
		}
		perPage = n
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	if raw := q.Get("cursor"); raw != "" {
		cursor, err := decodeCursor(raw)
		if err != nil {
			return store.ListUsersParams{}, 0,
				domain.NewValidationError("cursor", "is malformed")
		}
		return store.ListUsersParams{Limit: perPage, After: cursor}, 0, nil
	}

	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return store.ListUsersParams{}, 0,
				domain.NewValidationError("page", "must be a positive integer")
		}
		page = n
	}

	return store.ListUsersParams{
		Offset: (page - 1) * perPage,
		Limit:  perPage,
	}, page, nil
}

// cursor = base64url("RFC3339Nano|uuid"), pointing at the last user of the
// previous page in the stable (created_at, id) ordering.
func encodeCursor(c *store.UserCursor) string {
	if c == nil {
		return ""
	}
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(s string) (*store.UserCursor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(string(b), "|")
	if len(parts) != 2 {
		return nil, domain.ErrValidation
	}
	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, err
	}
	return &store.UserCursor{CreatedAt: t, ID: id}, nil
}
