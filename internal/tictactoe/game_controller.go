package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timeline/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timeline/internal/entity"
)

// Winner - returns the mark holding a full row, column or diagonal, or an empty string.
func Winner(board entity.Board) string {
	for _, combo := range entity.WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a
		}
	}

	return entity.EmptyCell
}

// Turn - returns the mark to play on the displayed board. X moves on even cursors.
func Turn(session *entity.Session) string {
	return markForMove(session.Cursor)
}

// MakeTurn - places the current mark on the displayed board, dropping any boards after it.
func MakeTurn(session *entity.Session, cell int) error {
	if err := validateMove(session, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	next := session.Current()
	next[cell] = Turn(session)

	session.History = append(session.History[:session.Cursor+1:session.Cursor+1], next)
	session.Cursor++

	return nil
}

// JumpTo - moves the cursor to a board already in the history.
func JumpTo(session *entity.Session, index int) error {
	if index < 0 || index >= len(session.History) {
		return fmt.Errorf("%w: %d of %d", apperror.ErrInvalidHistoryIndex, index, len(session.History))
	}

	session.Cursor = index

	return nil
}

// Restart - shows the empty board again. The history stays until the next move.
func Restart(session *entity.Session) {
	session.Cursor = 0
}

// State - builds the view of the displayed board.
func State(session *entity.Session) *entity.GameState {
	board := session.Current()

	state := &entity.GameState{
		SessionID:  session.ID,
		Board:      board,
		Cursor:     session.Cursor,
		HistoryLen: len(session.History),
		Status:     entity.StatusOngoing,
		Steps:      Steps(session),
	}

	switch winner := Winner(board); {
	case winner != entity.EmptyCell:
		state.Winner = winner
		state.Status = entity.StatusFinished
		state.StatusText = "Winner: " + winner
	// a cursor of 9 means every cell has been filled
	case session.Cursor == entity.BoardSize:
		state.Draw = true
		state.Status = entity.StatusFinished
		state.StatusText = "It's a draw!"
	default:
		state.NextPlayer = Turn(session)
		state.StatusText = "Next player: " + state.NextPlayer
	}

	state.CanRestart = state.IsFinished()

	return state
}

// Steps - lists the timeline controls, one per board in the history.
func Steps(session *entity.Session) []entity.Step {
	steps := make([]entity.Step, 0, len(session.History))
	for i := range session.History {
		description := "Go to game start"
		if i > 0 {
			description = fmt.Sprintf("Go to move #%d", i)
		}

		steps = append(steps, entity.Step{Index: i, Description: description})
	}

	return steps
}

// Validate - checks that a session loaded from storage could have been built by MakeTurn.
func Validate(session *entity.Session) error {
	if len(session.History) == 0 {
		return fmt.Errorf("%w: empty history", apperror.ErrCorruptedSession)
	}

	if session.Cursor < 0 || session.Cursor >= len(session.History) {
		return fmt.Errorf("%w: cursor %d out of %d", apperror.ErrCorruptedSession, session.Cursor, len(session.History))
	}

	if session.History[0] != (entity.Board{}) {
		return fmt.Errorf("%w: first board is not empty", apperror.ErrCorruptedSession)
	}

	for i := 1; i < len(session.History); i++ {
		if err := validateStep(session.History[i-1], session.History[i], markForMove(i-1)); err != nil {
			return fmt.Errorf("%w: move #%d: %v", apperror.ErrCorruptedSession, i, err)
		}
	}

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(session *entity.Session, cell int) error {
	if cell < 0 || cell >= entity.BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	board := session.Current()

	if Winner(board) != entity.EmptyCell {
		return apperror.ErrGameFinished
	}

	if !board.IsEmpty(cell) {
		return apperror.ErrCellOccupied
	}

	return nil
}

func validateStep(prev, next entity.Board, mark string) error {
	if winner := Winner(prev); winner != entity.EmptyCell {
		return fmt.Errorf("move after %s won", winner)
	}

	changed := 0
	for i := range next {
		if prev[i] == next[i] {
			continue
		}

		if prev[i] != entity.EmptyCell {
			return fmt.Errorf("cell %d overwritten", i)
		}

		if next[i] != mark {
			return fmt.Errorf("cell %d holds %q, want %q", i, next[i], mark)
		}

		changed++
	}

	if changed != 1 {
		return fmt.Errorf("%d cells changed", changed)
	}

	return nil
}

func markForMove(moveIndex int) string {
	if moveIndex%2 == 0 {
		return entity.PlayerX
	}
	return entity.PlayerO
}
