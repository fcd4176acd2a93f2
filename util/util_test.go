package util

import (
	"testing"
	"time"
)

func TestPtrDeref(t *testing.T) {
	v := Ptr(42)
	if *v != 42 {
		t.Errorf("expected 42, got %d", *v)
	}

	if got := Deref(v); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}

	var nilPtr *int
	if got := Deref(nilPtr); got != 0 {
		t.Errorf("expected zero value for nil pointer, got %d", got)
	}
}

func TestPtrTime(t *testing.T) {
	now := time.Now()
	p := Ptr(now)
	if !p.Equal(now) {
		t.Error("expected pointer to preserve time value")
	}

	var nilTime *time.Time
	if !Deref(nilTime).IsZero() {
		t.Error("expected zero time for nil pointer")
	}
}

func TestKeys(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2, "c": 3}
	keys := Keys(m)
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(keys))
	}
	for _, k := range []string{"a", "b", "c"} {
		if !Contains(keys, k) {
			t.Errorf("expected keys to contain %q", k)
		}
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{
		"state_transitions": 1,
		"data_integrity":    2,
		"relationships":     3,
	}
	keys := SortedKeys(m)
	want := []string{"data_integrity", "relationships", "state_transitions"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("position %d: expected %q, got %q", i, k, keys[i])
		}
	}
}

func TestSortedKeysEmpty(t *testing.T) {
	keys := SortedKeys(map[string]struct{}{})
	if len(keys) != 0 {
		t.Errorf("expected empty slice, got %v", keys)
	}
}

func TestContains(t *testing.T) {
	s := []string{"full", "quick"}
	if !Contains(s, "quick") {
		t.Error("expected slice to contain 'quick'")
	}
	if Contains(s, "partial") {
		t.Error("expected slice not to contain 'partial'")
	}
}

func TestUnique(t *testing.T) {
	s := []string{"a", "b", "a", "c", "b"}
	u := Unique(s)
	if len(u) != 3 {
		t.Fatalf("expected 3 unique values, got %d", len(u))
	}
	// Order of first occurrence is preserved.
	if u[0] != "a" || u[1] != "b" || u[2] != "c" {
		t.Errorf("expected [a b c], got %v", u)
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "fallback"); got != "fallback" {
		t.Errorf("expected 'fallback', got %q", got)
	}
	if got := Coalesce("first", "second"); got != "first" {
		t.Errorf("expected 'first', got %q", got)
	}
	if got := Coalesce(0, 0, 7); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
