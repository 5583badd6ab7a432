package fingerprint

import (
	"testing"
	"time"
)

func TestDistinctForContributors(t *testing.T) {
	ts := time.Now()
	a := New("same content", ts, "alice")
	b := New("same content", ts, "bob")
	if a == b {
		t.Errorf("fingerprints should differ per contributor: %s", a)
	}
}

func TestDistinctForTimestamps(t *testing.T) {
	ts := time.Now()
	a := New("same content", ts, "alice")
	b := New("same content", ts.Add(time.Nanosecond), "alice")
	if a == b {
		t.Errorf("fingerprints should differ per timestamp: %s", a)
	}
}

func TestLengths(t *testing.T) {
	ts := time.Now()
	if got := len(New("x", ts, "a")); got != ShortLen {
		t.Errorf("short len = %d, want %d", got, ShortLen)
	}
	if got := len(Long("x", ts, "a")); got != LongLen {
		t.Errorf("long len = %d, want %d", got, LongLen)
	}
}

func TestLongExtendsShort(t *testing.T) {
	ts := time.Now()
	short := New("x", ts, "a")
	long := Long("x", ts, "a")
	if long[:ShortLen] != short {
		t.Errorf("long %s does not extend short %s", long, short)
	}
}

func TestDeterministic(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if New("body", ts, "alice") != New("body", ts, "alice") {
		t.Error("fingerprint should be deterministic")
	}
}
