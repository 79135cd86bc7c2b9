package util

import (
    "strconv"
    "strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
    if s == "" {
        return def
    }
    v, err := strconv.Atoi(s)
    if err != nil {
        return def
    }
    return v
}

// TeamKey normalizes a team code ("lal ", "LAL") into its canonical upper-case form.
func TeamKey(s string) string {
    return strings.ToUpper(strings.TrimSpace(s))
}

// SplitList splits a comma separated env value, dropping blanks.
func SplitList(s string) []string {
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}
