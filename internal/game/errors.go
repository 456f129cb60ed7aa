package game

import "errors"

// Engine error taxonomy. All of these are expected, recoverable conditions;
// callers classify them with errors.Is and map them to protocol codes.
var (
	ErrInvalidFormat     = errors.New("guess must be exactly 5 letters")
	ErrUnknownWord       = errors.New("word not in dictionary")
	ErrSessionTerminal   = errors.New("game is already over")
	ErrRoomNotInProgress = errors.New("game not in progress")
	ErrPlayerFinished    = errors.New("player already finished")
	ErrNotFound          = errors.New("not found")
	ErrRoomFull          = errors.New("room is full")
	ErrRoomNotWaiting    = errors.New("game already in progress")
	ErrCannotStart       = errors.New("cannot start game")
	ErrInvalidCapacity   = errors.New("room capacity must be at least 2")
)
