package app

import (
	"testing"
	"time"
)

func TestParseTimezoneLocation(t *testing.T) {
	if loc, err := parseTimezoneLocation("Asia/Shanghai"); err != nil || loc.String() != "Asia/Shanghai" {
		t.Fatalf("IANA zone: loc=%v err=%v", loc, err)
	}

	loc, err := parseTimezoneLocation("+08:00")
	if err != nil {
		t.Fatalf("fixed offset: %v", err)
	}
	if _, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone(); offset != 8*3600 {
		t.Fatalf("unexpected offset %d", offset)
	}

	loc, err = parseTimezoneLocation("-05:30")
	if err != nil {
		t.Fatalf("negative offset: %v", err)
	}
	if _, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone(); offset != -(5*3600 + 30*60) {
		t.Fatalf("unexpected offset %d", offset)
	}

	for _, bad := range []string{"Mars/Olympus", "+25:00", "0800"} {
		if _, err := parseTimezoneLocation(bad); err == nil {
			t.Fatalf("%q should be rejected", bad)
		}
	}
}

func TestHumanizeDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{42 * time.Second, "42s"},
		{90 * time.Second, "1m0s"},
		{3 * time.Hour, "3h0m0s"},
		{26 * time.Hour, "24h0m0s"},
	}
	for _, tc := range cases {
		if got := humanizeDuration(tc.in); got != tc.want {
			t.Fatalf("humanizeDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
