package util

import (
	"strconv"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDateRangeInclusive(t *testing.T) {
	r := NewDateRange(day("2024-02-27"), day("2024-03-02"))
	got := r.Slice()
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if len(got) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(got))
	}
	for i, d := range got {
		if d.Format(DateLayout) != want[i] {
			t.Fatalf("day %d: expected %s, got %s", i, want[i], d.Format(DateLayout))
		}
	}
	if r.Len() != len(want) {
		t.Fatalf("unexpected len %d", r.Len())
	}
}

func TestDateRangeSingleDay(t *testing.T) {
	r := NewDateRange(day("2024-05-01"), day("2024-05-01"))
	if r.Len() != 1 || len(r.Slice()) != 1 {
		t.Fatalf("expected exactly one day")
	}
}

func TestDateRangeEmptyWhenReversed(t *testing.T) {
	r := NewDateRange(day("2024-05-02"), day("2024-05-01"))
	if r.Len() != 0 {
		t.Fatalf("expected empty range, len=%d", r.Len())
	}
	for range r.Days() {
		t.Fatalf("expected no days")
	}
}

func TestDateRangeRestartable(t *testing.T) {
	r := NewDateRange(day("2024-01-30"), day("2024-02-02"))
	first := 0
	for range r.Days() {
		first++
	}
	second := 0
	for range r.Days() {
		second++
	}
	if first != 4 || second != 4 {
		t.Fatalf("expected 4 days twice, got %d and %d", first, second)
	}
}

func TestDateRangeEarlyBreak(t *testing.T) {
	r := NewDateRange(day("2024-01-01"), day("2024-12-31"))
	n := 0
	for range r.Days() {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Fatalf("unexpected count %d", n)
	}
}

func TestNewDateRangeDropsClock(t *testing.T) {
	start := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	end := time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC)
	r := NewDateRange(start, end)
	if r.Len() != 2 {
		t.Fatalf("expected 2 days, got %d", r.Len())
	}
	if r.Start.Hour() != 0 || r.End.Minute() != 0 {
		t.Fatalf("expected midnight bounds, got %v %v", r.Start, r.End)
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseDateDefault("", def)
	if !got.Equal(TruncateDay(def)) {
		t.Fatalf("expected default, got %v", got)
	}
	if _, err := ParseDate("10/10/2024"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}
