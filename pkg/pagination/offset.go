package pagination

import (
	"fmt"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// OffsetRequest carries offset/limit paging parameters echoed back in every
// list response envelope.
type OffsetRequest struct {
	Limit  int `json:"limit" query:"limit"`
	Offset int `json:"offset" query:"offset"`
}

// FromParams parses raw query parameter strings. Empty strings take the
// defaults; malformed or negative values are a caller error.
func FromParams(limitStr, offsetStr string) (OffsetRequest, error) {
	req := OffsetRequest{Limit: DefaultLimit, Offset: 0}

	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return req, fmt.Errorf("limit must be a positive integer, got %q", limitStr)
		}
		req.Limit = limit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	if offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return req, fmt.Errorf("offset must be a non-negative integer, got %q", offsetStr)
		}
		req.Offset = offset
	}

	return req, nil
}
