package session

import "github.com/notnil/chess"

// Result represents the result of a single finished game from the
// oracle's perspective.
type Result int

const (
	Win  Result = +1
	Draw Result = 0
	Loss Result = -1
)

// Reasons a session can terminate for. Position-terminal games carry
// ReasonNormal with the rules engine's method alongside.
const (
	ReasonNormal        = "normal_game_end"
	ReasonIllegalMove   = "illegal_move"
	ReasonOpponentError = "opponent_error"
	ReasonPlyLimit      = "max_plies_reached"
	ReasonCancelled     = "cancelled"
)

// String returns a string representation of the given Result.
func (result Result) String() string {
	switch result {
	case Win:
		return "win"
	case Draw:
		return "draw"
	case Loss:
		return "loss"
	default:
		return "?"
	}
}

// Scoreline renders the Result as a PGN result string given the
// oracle's color.
func (result Result) Scoreline(oracle chess.Color) string {
	switch {
	case result == Draw:
		return "1/2-1/2"
	case (result == Win) == (oracle == chess.White):
		return "1-0"
	default:
		return "0-1"
	}
}

// resultFromScoreline maps a PGN result string to a Result for the
// given oracle color.
func resultFromScoreline(scoreline string, oracle chess.Color) Result {
	switch scoreline {
	case "1/2-1/2":
		return Draw
	case "1-0":
		if oracle == chess.White {
			return Win
		}
		return Loss
	case "0-1":
		if oracle == chess.Black {
			return Win
		}
		return Loss
	default:
		return Draw
	}
}
