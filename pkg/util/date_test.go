package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseDateDay(t *testing.T) {
    got, ok := ParseDate("2024-10-22")
    if !ok {
        t.Fatalf("expected ok")
    }
    if FormatDay(got) != "2024-10-22" {
        t.Fatalf("unexpected day %v", got)
    }
}

func TestParseDateRFC3339Truncates(t *testing.T) {
    got, ok := ParseDate("2024-10-22T23:10:10Z")
    if !ok {
        t.Fatalf("expected ok")
    }
    if !got.Equal(time.Date(2024, 10, 22, 0, 0, 0, 0, time.UTC)) {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseDateUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseDate(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if FormatDay(got) != "2024-10-10" {
        t.Fatalf("unexpected day %v", got)
    }
}

func TestParseDateInvalid(t *testing.T) {
    if _, ok := ParseDate("yesterday"); ok {
        t.Fatalf("expected failure")
    }
}

func TestParseDateDefault(t *testing.T) {
    def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
    got := ParseDateDefault("", def)
    if !got.Equal(def) {
        t.Fatalf("expected default")
    }
}

func TestParseIntDefault(t *testing.T) {
    if ParseIntDefault("12", 3) != 12 {
        t.Fatalf("expected 12")
    }
    if ParseIntDefault("x", 3) != 3 {
        t.Fatalf("expected default")
    }
}

func TestTeamKey(t *testing.T) {
    if TeamKey(" lal ") != "LAL" {
        t.Fatalf("unexpected key %q", TeamKey(" lal "))
    }
}

func TestSplitList(t *testing.T) {
    got := SplitList("a:9092, ,b:9092")
    if len(got) != 2 || got[0] != "a:9092" || got[1] != "b:9092" {
        t.Fatalf("unexpected list %v", got)
    }
}
