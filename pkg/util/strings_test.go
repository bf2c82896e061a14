package util

import "testing"

func TestParseIntDefault(t *testing.T) {
    if got := ParseIntDefault("", 7); got != 7 {
        t.Fatalf("expected default, got %d", got)
    }
    if got := ParseIntDefault("x", 7); got != 7 {
        t.Fatalf("expected default on garbage, got %d", got)
    }
    if got := ParseIntDefault("42", 7); got != 42 {
        t.Fatalf("expected 42, got %d", got)
    }
}

func TestSplitAndTrim(t *testing.T) {
    got := SplitAndTrim(" a, b ,,c ")
    if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
        t.Fatalf("unexpected %v", got)
    }
}
