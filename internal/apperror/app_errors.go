package apperror

import "errors"

var (
	ErrGameFinished        = errors.New("game is already finished")
	ErrCellOccupied        = errors.New("cell is already occupied")
	ErrInvalidCell         = errors.New("invalid cell index")
	ErrInvalidHistoryIndex = errors.New("invalid history index")
	ErrSessionNotFound     = errors.New("session not found")
	ErrCorruptedSession    = errors.New("session history is corrupted")
)

// IsRejectedMove reports whether err is a move the board does not accept.
// Such moves are ignored rather than reported to the player.
func IsRejectedMove(err error) bool {
	return errors.Is(err, ErrGameFinished) || errors.Is(err, ErrCellOccupied)
}
