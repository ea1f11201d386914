package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timeline/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timeline/internal/entity"
)

const (
	x = entity.PlayerX
	o = entity.PlayerO
	e = entity.EmptyCell
)

// play - applies the moves in order and fails the test on the first rejected one.
func play(t *testing.T, session *entity.Session, cells ...int) {
	t.Helper()

	for _, cell := range cells {
		require.NoError(t, MakeTurn(session, cell), "move to cell %d", cell)
	}
}

func TestWinner(t *testing.T) {
	t.Run("Row", func(t *testing.T) {
		// Given: X holds the top row
		board := entity.Board{x, x, x, o, o, e, e, e, e}

		// Then: X is the winner
		assert.Equal(t, x, Winner(board))
	})

	t.Run("Column", func(t *testing.T) {
		// Given: O holds the middle column
		board := entity.Board{x, o, e, x, o, e, e, o, x}

		// Then: O is the winner
		assert.Equal(t, o, Winner(board))
	})

	t.Run("Diagonal", func(t *testing.T) {
		// Given: X holds the anti-diagonal
		board := entity.Board{o, o, x, e, x, e, x, e, e}

		// Then: X is the winner
		assert.Equal(t, x, Winner(board))
	})

	t.Run("No winner on empty board", func(t *testing.T) {
		assert.Equal(t, entity.EmptyCell, Winner(entity.Board{}))
	})

	t.Run("No winner on full drawn board", func(t *testing.T) {
		// Given: a full board without a line
		board := entity.Board{x, o, x, x, o, o, o, x, x}

		// Then: nobody wins
		assert.Equal(t, entity.EmptyCell, Winner(board))
	})
}

// uniformLine checks rows, columns and diagonals by coordinates instead of the combo table.
func uniformLine(board entity.Board) string {
	at := func(row, col int) string { return board[row*3+col] }

	same := func(a, b, c string) bool { return a != e && a == b && b == c }

	for i := 0; i < 3; i++ {
		if same(at(i, 0), at(i, 1), at(i, 2)) {
			return at(i, 0)
		}
		if same(at(0, i), at(1, i), at(2, i)) {
			return at(0, i)
		}
	}

	if same(at(0, 0), at(1, 1), at(2, 2)) {
		return at(1, 1)
	}
	if same(at(0, 2), at(1, 1), at(2, 0)) {
		return at(1, 1)
	}

	return e
}

func TestWinner_AllBoards(t *testing.T) {
	marks := [3]string{e, x, o}

	total := 1
	for i := 0; i < entity.BoardSize; i++ {
		total *= len(marks)
	}

	for n := 0; n < total; n++ {
		var board entity.Board
		rest := n
		for i := range board {
			board[i] = marks[rest%3]
			rest /= 3
		}

		got := Winner(board)
		want := uniformLine(board)

		if want == e {
			require.Equal(t, e, got, "board %v", board)
			continue
		}

		// a board may hold lines of both marks; any uniform line is a valid answer
		require.NotEqual(t, e, got, "board %v", board)
	}
}

func TestMakeTurn(t *testing.T) {
	t.Run("Places X first and advances the cursor", func(t *testing.T) {
		// Given: a new session
		session := entity.NewSession("123")

		// When: the first move is made
		err := MakeTurn(session, 4)

		// Then: X is on the board and a new snapshot is appended
		require.NoError(t, err)
		assert.Equal(t, 1, session.Cursor)
		require.Len(t, session.History, 2)
		assert.Equal(t, entity.Board{}, session.History[0])
		assert.Equal(t, entity.Board{e, e, e, e, x, e, e, e, e}, session.History[1])
		assert.Equal(t, o, Turn(session))
	})

	t.Run("Marks alternate", func(t *testing.T) {
		// Given: a new session
		session := entity.NewSession("123")

		// When: four moves are made
		play(t, session, 0, 1, 2, 3)

		// Then: marks alternate X, O, X, O
		assert.Equal(t, entity.Board{x, o, x, o, e, e, e, e, e}, session.Current())
		assert.Equal(t, x, Turn(session))
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: X has played cell 0
		session := entity.NewSession("123")
		play(t, session, 0)
		before := cloneSession(session)

		// When: O tries the same cell
		err := MakeTurn(session, 0)

		// Then: the move is rejected and nothing changes
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, before, session)
	})

	t.Run("Invalid Cell", func(t *testing.T) {
		session := entity.NewSession("123")

		err := MakeTurn(session, 9)

		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
		assert.Len(t, session.History, 1)
	})

	t.Run("Invalid Negative Cell", func(t *testing.T) {
		session := entity.NewSession("123")

		err := MakeTurn(session, -1)

		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
		assert.Len(t, session.History, 1)
	})

	t.Run("Move After Game Finished", func(t *testing.T) {
		// Given: X has completed the top row
		session := entity.NewSession("123")
		play(t, session, 0, 3, 1, 4, 2)
		require.Equal(t, x, Winner(session.Current()))
		before := cloneSession(session)

		// When: O tries to keep playing
		err := MakeTurn(session, 8)

		// Then: ErrGameFinished is returned and the session is unchanged
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, before, session)
	})

	t.Run("Move After Draw", func(t *testing.T) {
		// Given: a drawn game
		session := entity.NewSession("123")
		play(t, session, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// When: another move is attempted
		err := MakeTurn(session, 0)

		// Then: the full board rejects it
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Len(t, session.History, 10)
	})

	t.Run("Move after a jump drops the future", func(t *testing.T) {
		// Given: three moves, then a jump back to move #1
		session := entity.NewSession("123")
		play(t, session, 0, 1, 2)
		require.NoError(t, JumpTo(session, 1))

		// When: O plays a different cell
		err := MakeTurn(session, 8)

		// Then: the history is cut after move #1 and the new board appended
		require.NoError(t, err)
		require.Len(t, session.History, 3)
		assert.Equal(t, 2, session.Cursor)
		assert.Equal(t, entity.Board{x, e, e, e, e, e, e, e, o}, session.Current())
	})

	t.Run("Truncation does not alias the old history", func(t *testing.T) {
		// Given: a session with a kept reference to its old history
		session := entity.NewSession("123")
		play(t, session, 0, 1, 2)
		old := session.History
		require.NoError(t, JumpTo(session, 1))

		// When: a different move is made
		play(t, session, 8)

		// Then: the old slice still holds the discarded board
		assert.Equal(t, entity.Board{x, o, x, e, e, e, e, e, e}, old[3])
	})
}

func TestJumpTo(t *testing.T) {
	t.Run("Moves only the cursor", func(t *testing.T) {
		// Given: a session with four moves
		session := entity.NewSession("123")
		play(t, session, 0, 1, 2, 3)
		history := append([]entity.Board(nil), session.History...)

		for k := range history {
			// When: jumping to move k
			err := JumpTo(session, k)

			// Then: the history is intact and the turn follows the cursor
			require.NoError(t, err)
			assert.Equal(t, k, session.Cursor)
			assert.Equal(t, history, session.History)
			assert.Equal(t, markForMove(k), Turn(session))
		}
	})

	t.Run("Rejects indexes outside the history", func(t *testing.T) {
		session := entity.NewSession("123")
		play(t, session, 0)

		for _, index := range []int{-1, 2, 100} {
			err := JumpTo(session, index)

			require.ErrorIs(t, err, apperror.ErrInvalidHistoryIndex)
			assert.Equal(t, 1, session.Cursor)
			assert.Len(t, session.History, 2)
		}
	})
}

func TestRestart(t *testing.T) {
	// Given: a finished game
	session := entity.NewSession("123")
	play(t, session, 0, 3, 1, 4, 2)

	// When: the game is restarted
	Restart(session)

	// Then: the empty board is shown and the history is kept
	assert.Equal(t, 0, session.Cursor)
	assert.Len(t, session.History, 6)
	assert.Equal(t, x, Turn(session))

	// When: X plays again
	play(t, session, 4)

	// Then: the previous game is discarded
	assert.Len(t, session.History, 2)
}

func TestState(t *testing.T) {
	t.Run("New game", func(t *testing.T) {
		state := State(entity.NewSession("123"))

		assert.Equal(t, &entity.GameState{
			SessionID:  "123",
			Board:      entity.Board{},
			Cursor:     0,
			HistoryLen: 1,
			Status:     entity.StatusOngoing,
			NextPlayer: x,
			StatusText: "Next player: X",
			Steps:      []entity.Step{{Index: 0, Description: "Go to game start"}},
		}, state)
	})

	t.Run("Winner after completing a row", func(t *testing.T) {
		// Given: X takes 0, 1 and 2 while O takes 3 and 4
		session := entity.NewSession("123")
		play(t, session, 0, 3, 1, 4, 2)

		// When: building the state
		state := State(session)

		// Then: X wins after the fifth move
		assert.Equal(t, 5, state.Cursor)
		assert.Equal(t, x, state.Winner)
		assert.False(t, state.Draw)
		assert.Empty(t, state.NextPlayer)
		assert.Equal(t, "Winner: X", state.StatusText)
		assert.True(t, state.CanRestart)
		assert.True(t, state.IsFinished())
	})

	t.Run("Interleaved moves without a line keep the game going", func(t *testing.T) {
		// Given: X plays 0, 1, 7 and O plays 4, 2
		session := entity.NewSession("123")
		play(t, session, 0, 4, 1, 2, 7)

		// When: building the state
		state := State(session)

		// Then: nobody has won and O is next
		assert.Equal(t, entity.Board{x, x, o, e, o, e, e, x, e}, state.Board)
		assert.Empty(t, state.Winner)
		assert.Equal(t, o, state.NextPlayer)
		assert.False(t, state.CanRestart)
	})

	t.Run("Draw after nine moves", func(t *testing.T) {
		// Given: nine moves without a line
		session := entity.NewSession("123")
		play(t, session, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// When: building the state
		state := State(session)

		// Then: the game is a draw
		assert.True(t, state.Draw)
		assert.Empty(t, state.Winner)
		assert.Empty(t, state.NextPlayer)
		assert.Equal(t, "It's a draw!", state.StatusText)
		assert.True(t, state.CanRestart)
	})

	t.Run("Win on the ninth move is not a draw", func(t *testing.T) {
		// Given: X completes a diagonal with the last cell
		session := entity.NewSession("123")
		play(t, session, 0, 1, 2, 5, 3, 6, 4, 7, 8)

		// When: building the state
		state := State(session)

		// Then: X wins
		assert.Equal(t, x, state.Winner)
		assert.False(t, state.Draw)
	})

	t.Run("State follows the cursor", func(t *testing.T) {
		// Given: a finished game viewed at move #2
		session := entity.NewSession("123")
		play(t, session, 0, 3, 1, 4, 2)
		require.NoError(t, JumpTo(session, 2))

		// When: building the state
		state := State(session)

		// Then: the earlier board is shown with X to play
		assert.Equal(t, entity.Board{x, e, e, o, e, e, e, e, e}, state.Board)
		assert.Equal(t, x, state.NextPlayer)
		assert.Equal(t, 6, state.HistoryLen)
		assert.Len(t, state.Steps, 6)
		assert.False(t, state.CanRestart)
	})
}

func TestSteps(t *testing.T) {
	session := entity.NewSession("123")
	play(t, session, 0, 1)

	assert.Equal(t, []entity.Step{
		{Index: 0, Description: "Go to game start"},
		{Index: 1, Description: "Go to move #1"},
		{Index: 2, Description: "Go to move #2"},
	}, Steps(session))
}

func TestValidate(t *testing.T) {
	t.Run("Accepts a played session", func(t *testing.T) {
		session := entity.NewSession("123")
		play(t, session, 0, 3, 1, 4, 2)
		require.NoError(t, JumpTo(session, 2))

		assert.NoError(t, Validate(session))
	})

	cases := []struct {
		name    string
		session *entity.Session
	}{
		{
			name:    "Empty history",
			session: &entity.Session{},
		},
		{
			name:    "Cursor past the end",
			session: &entity.Session{History: []entity.Board{{}}, Cursor: 1},
		},
		{
			name:    "Non-empty first board",
			session: &entity.Session{History: []entity.Board{{x}}},
		},
		{
			name:    "Two cells changed",
			session: &entity.Session{History: []entity.Board{{}, {x, o}}},
		},
		{
			name:    "No cell changed",
			session: &entity.Session{History: []entity.Board{{}, {}}},
		},
		{
			name:    "Wrong mark",
			session: &entity.Session{History: []entity.Board{{}, {o}}},
		},
		{
			name:    "Overwritten cell",
			session: &entity.Session{History: []entity.Board{{}, {x}, {o}}},
		},
		{
			name: "Move after a win",
			session: &entity.Session{History: []entity.Board{
				{},
				{x, e, e, e, e, e, e, e, e},
				{x, e, e, o, e, e, e, e, e},
				{x, x, e, o, e, e, e, e, e},
				{x, x, e, o, o, e, e, e, e},
				{x, x, x, o, o, e, e, e, e},
				{x, x, x, o, o, o, e, e, e},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.session)

			assert.ErrorIs(t, err, apperror.ErrCorruptedSession)
		})
	}
}

func cloneSession(session *entity.Session) *entity.Session {
	return &entity.Session{
		ID:      session.ID,
		History: append([]entity.Board(nil), session.History...),
		Cursor:  session.Cursor,
	}
}
