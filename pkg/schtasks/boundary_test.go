package schtasks

import (
	"errors"
	"testing"
	"time"
)

func TestResolveStartBoundaryRollsForward(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 27, 9, 5, 0, 0, time.Local)

	tests := []struct {
		name string
		in   string
		kind ScheduleKind
		want time.Time
	}{
		{name: "daily past time rolls to tomorrow", in: "09:00", kind: Daily,
			want: time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)},
		{name: "once keeps past time", in: "09:00", kind: Once,
			want: time.Date(2026, 8, 27, 9, 0, 0, 0, time.Local)},
		{name: "future time stays today", in: "23:30", kind: Daily,
			want: time.Date(2026, 8, 27, 23, 30, 0, 0, time.Local)},
		{name: "minute past time rolls", in: "00:15", kind: Minute,
			want: time.Date(2026, 8, 28, 0, 15, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ResolveStartBoundary(now, tt.in, tt.kind)
			if err != nil {
				t.Fatalf("ResolveStartBoundary(%q) error: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("boundary = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveStartBoundaryEmptyUsesNow(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 27, 9, 5, 0, 0, time.Local)
	got, err := ResolveStartBoundary(now, "", Daily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(now) {
		t.Fatalf("boundary = %v, want now", got)
	}
}

func TestResolveStartBoundaryInvalid(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"25:00", "9h30", "nine", "12:60"} {
		if _, err := ResolveStartBoundary(time.Now(), in, Daily); !errors.Is(err, ErrInvalidTime) {
			t.Fatalf("ResolveStartBoundary(%q) = %v, want ErrInvalidTime", in, err)
		}
	}
}
