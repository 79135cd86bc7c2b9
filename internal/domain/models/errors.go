package models

import (
	"errors"
	"fmt"
)

// ErrIncompleteRecord marks a matchup that cannot be scored because a required field is absent.
var ErrIncompleteRecord = errors.New("incomplete matchup record")

// IncompleteRecordError names the missing field of an unscorable matchup.
type IncompleteRecordError struct {
	GameID string
	Field  string
}

func (e *IncompleteRecordError) Error() string {
	if e.GameID == "" {
		return fmt.Sprintf("%s: missing %s", ErrIncompleteRecord, e.Field)
	}
	return fmt.Sprintf("%s %s: missing %s", ErrIncompleteRecord, e.GameID, e.Field)
}

func (e *IncompleteRecordError) Unwrap() error { return ErrIncompleteRecord }

// ErrInvalidRecord marks a matchup whose fields are present but out of range.
var ErrInvalidRecord = errors.New("invalid matchup record")

// ErrInvalidGame marks a history row or box score that cannot be recorded.
var ErrInvalidGame = errors.New("invalid game")
