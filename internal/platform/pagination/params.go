package pagination

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is used when a request omits limit and Options does not set one.
	DefaultLimit = 6
	// DefaultMaxLimit caps limit values.
	DefaultMaxLimit = 100
)

// Params holds the page and limit query values of a listing request.
type Params struct {
	Page  int
	Limit int
}

// Options control Parse defaults.
type Options struct {
	DefaultLimit int
	MaxLimit     int
}

var (
	ErrInvalidPage  = errors.New("pagination: page must be a positive integer")
	ErrInvalidLimit = errors.New("pagination: limit must be a positive integer")
)

// Parse reads page (default 1) and limit from values. Values above the maximum limit are clamped.
func Parse(values url.Values, opts Options) (Params, error) {
	defaultLimit := opts.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	maxLimit := opts.MaxLimit
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}

	page, err := positiveInt(values.Get("page"), 1)
	if err != nil {
		return Params{}, ErrInvalidPage
	}
	limit, err := positiveInt(values.Get("limit"), defaultLimit)
	if err != nil {
		return Params{}, ErrInvalidLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Params{Page: page, Limit: limit}, nil
}

// Window returns the exclusive end of a cumulative "load more" window over total items and
// whether items remain beyond it.
func Window(total, page, pageSize int) (end int, hasMore bool) {
	if page <= 0 || pageSize <= 0 || total <= 0 {
		return 0, total > 0
	}
	end = page * pageSize
	if end/pageSize != page || end > total {
		end = total
	}
	return end, end < total
}

func positiveInt(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}
