package usecases

import (
	"errors"
	"fmt"
)

// Errors returned to users by the music player commands.
var (
	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrInvalidPosition is returned when no live track sits at the requested position.
	ErrInvalidPosition = errors.New("invalid queue position")

	// ErrEmptyLink is returned when a play request carries nothing to play.
	ErrEmptyLink = errors.New("nothing to play")
)

// RangeError is returned when a removal range is reversed.
type RangeError struct {
	From int
	To   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("To cannot be greater than from, (from: %d, to: %d)", e.From, e.To)
}
