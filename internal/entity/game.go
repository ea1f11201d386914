package entity

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"

	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""

	// BoardSize is the number of cells, and so the number of moves a full game takes.
	BoardSize = 9
)

// WinCombos lists every row, column and diagonal of the board.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board holds the marks row-major: 0,1,2 / 3,4,5 / 6,7,8.
type Board [BoardSize]string

func (that Board) IsEmpty(cell int) bool {
	return that[cell] == EmptyCell
}

// Session is one player's game: every board reached so far and the one on display.
type Session struct {
	ID      string  `json:"id"`
	History []Board `json:"history"`
	Cursor  int     `json:"cursor"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:      id,
		History: []Board{{}},
		Cursor:  0,
	}
}

// Current returns the board the cursor points at.
func (that *Session) Current() Board {
	return that.History[that.Cursor]
}

// Step is one entry of the timeline a player can jump to.
type Step struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
}

// GameState is what a client needs to render the game.
type GameState struct {
	SessionID  string `json:"session_id"`
	Board      Board  `json:"board"`
	Cursor     int    `json:"cursor"`
	HistoryLen int    `json:"history_len"`
	Status     string `json:"status"`
	Winner     string `json:"winner"`
	Draw       bool   `json:"draw"`
	NextPlayer string `json:"next_player"`
	StatusText string `json:"status_text"`
	Steps      []Step `json:"steps"`
	CanRestart bool   `json:"can_restart"`
}

func (that *GameState) IsFinished() bool {
	return that.Status == StatusFinished
}
