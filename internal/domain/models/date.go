package models

import (
	"encoding/json"
	"fmt"
	"time"

	"HoopLine/pkg/util"
)

// GameDate is a UTC calendar day encoded as "YYYY-MM-DD" on the wire.
type GameDate struct {
	time.Time
}

// NewGameDate builds a GameDate from calendar parts.
func NewGameDate(year int, month time.Month, day int) GameDate {
	return GameDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) GameDate {
	return GameDate{Time: util.Day(t)}
}

func (d GameDate) String() string { return util.FormatDay(d.Time) }

// AddDays shifts the date by n calendar days.
func (d GameDate) AddDays(n int) GameDate {
	return GameDate{Time: d.Time.AddDate(0, 0, n)}
}

func (d GameDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.String())
}

func (d *GameDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("game date: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, ok := util.ParseDate(s)
	if !ok {
		return fmt.Errorf("game date: cannot parse %q", s)
	}
	d.Time = t
	return nil
}
