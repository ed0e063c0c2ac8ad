package performancehandler

import (
	"testing"
	"time"
)

func TestParseQuarter(t *testing.T) {
	cases := []struct {
		raw  string
		from time.Time
		to   time.Time
		ok   bool
	}{
		{
			raw:  "2025-Q1",
			from: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
			ok:   true,
		},
		{
			raw:  "2025-q4",
			from: time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
			ok:   true,
		},
		{raw: "2025-Q5", ok: false},
		{raw: "2025-Q0", ok: false},
		{raw: "Q1", ok: false},
		{raw: "2025", ok: false},
		{raw: "abcd-Q2", ok: false},
	}

	for _, tc := range cases {
		from, to, ok := parseQuarter(tc.raw)
		if ok != tc.ok {
			t.Errorf("%q: ok = %v, want %v", tc.raw, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		if !from.Equal(tc.from) || !to.Equal(tc.to) {
			t.Errorf("%q: window [%v, %v], want [%v, %v]", tc.raw, from, to, tc.from, tc.to)
		}
	}
}
