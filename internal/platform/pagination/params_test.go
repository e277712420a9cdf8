package pagination

import (
	"errors"
	"net/url"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	params, err := Parse(url.Values{}, Options{DefaultLimit: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Page != 1 || params.Limit != 12 {
		t.Fatalf("unexpected params %+v", params)
	}
}

func TestParseClampsLimit(t *testing.T) {
	params, err := Parse(url.Values{"limit": {"500"}, "page": {"3"}}, Options{MaxLimit: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Limit != 50 || params.Page != 3 {
		t.Fatalf("unexpected params %+v", params)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		values url.Values
		want   error
	}{
		{url.Values{"page": {"0"}}, ErrInvalidPage},
		{url.Values{"page": {"two"}}, ErrInvalidPage},
		{url.Values{"limit": {"-1"}}, ErrInvalidLimit},
	}
	for _, tc := range cases {
		if _, err := Parse(tc.values, Options{}); !errors.Is(err, tc.want) {
			t.Errorf("Parse(%v) error = %v, want %v", tc.values, err, tc.want)
		}
	}
}

func TestWindow(t *testing.T) {
	cases := []struct {
		total, page, size int
		end               int
		more              bool
	}{
		{total: 44, page: 1, size: 12, end: 12, more: true},
		{total: 44, page: 3, size: 12, end: 36, more: true},
		{total: 44, page: 4, size: 12, end: 44, more: false},
		{total: 44, page: 9, size: 12, end: 44, more: false},
		{total: 0, page: 1, size: 12, end: 0, more: false},
	}
	for _, tc := range cases {
		end, more := Window(tc.total, tc.page, tc.size)
		if end != tc.end || more != tc.more {
			t.Errorf("Window(%d, %d, %d) = %d, %v; want %d, %v", tc.total, tc.page, tc.size, end, more, tc.end, tc.more)
		}
	}
}
