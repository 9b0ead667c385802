package time

import (
	"testing"
	"time"
)

func TestPtr(t *testing.T) {
	if Ptr(time.Time{}) != nil {
		t.Fatalf("Ptr(zero) != nil")
	}
	now := time.Now()
	if p := Ptr(now); p == nil || !p.Equal(now) {
		t.Fatalf("Ptr(now) = %v", p)
	}
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	in := time.Date(2026, 10, 18, 5, 30, 0, 0, loc) // 19:30 UTC on the 17th
	got := Today(in)
	want := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("Today = %v, want %v", got, want)
	}
}
