// internal/game/types.go
//
// Core type definitions for the word-guessing engine.
// Defines:
//   - Evaluation: per-letter result of a guess (absent/present/correct).
//   - Game:  state of a single play-through.
//   - Stats: cumulative per-player statistics across games.
//   - State: the Game + Stats pair persisted per session.

package game

const (
	// WordLength is the fixed number of letters in every guess and target.
	WordLength = 5
	// MaxGuesses is the number of attempts before a game is lost.
	MaxGuesses = 6
	// LossBucket is the guess distribution index that counts losses.
	LossBucket = MaxGuesses
)

// Evaluation classifies one letter of a guess against the target.
// The integer values are part of the wire format.
type Evaluation int

const (
	Absent  Evaluation = iota // letter is not in the (remaining) target
	Present                   // letter is in the target at another position
	Correct                   // letter is in the correct position
)

func (e Evaluation) String() string {
	switch e {
	case Correct:
		return "correct"
	case Present:
		return "present"
	default:
		return "absent"
	}
}

// Game holds the state of a single play-through.
type Game struct {
	TargetWord  string         `json:"target_word"`
	Guesses     []string       `json:"guess_matrix"`
	Evaluations [][]Evaluation `json:"evaluation_matrix"`
	HasWon      bool           `json:"has_won"`
	GameOver    bool           `json:"game_over"`
}

// Status values reported by Game.Status.
const (
	StatusInProgress = "in_progress"
	StatusWon        = "won"
	StatusLost       = "lost"
)

// Status reports a coarse string representation of the game state.
func (g Game) Status() string {
	switch {
	case g.HasWon:
		return StatusWon
	case g.GameOver:
		return StatusLost
	default:
		return StatusInProgress
	}
}

// Lost reports whether the game ended without a win.
func (g Game) Lost() bool { return g.GameOver && !g.HasWon }

// Clone returns a deep copy so callers never share slices.
func (g Game) Clone() Game {
	out := g
	out.Guesses = append(make([]string, 0, len(g.Guesses)), g.Guesses...)
	out.Evaluations = make([][]Evaluation, len(g.Evaluations))
	for i, row := range g.Evaluations {
		out.Evaluations[i] = append([]Evaluation(nil), row...)
	}
	return out
}

// Stats tracks streaks and the guess distribution.
// GuessDistribution[0..5] counts wins by guesses used minus one,
// GuessDistribution[LossBucket] counts losses.
type Stats struct {
	CurrentStreak     int                `json:"current_streak"`
	LongestStreak     int                `json:"longest_streak"`
	GuessDistribution [MaxGuesses + 1]int `json:"guess_distribution"`
}

// GamesPlayed is the number of concluded games since the last reset.
func (s Stats) GamesPlayed() int {
	n := 0
	for _, c := range s.GuessDistribution {
		n += c
	}
	return n
}

// State is everything a session owns.
type State struct {
	Game  Game  `json:"game"`
	Stats Stats `json:"stats"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	return State{Game: s.Game.Clone(), Stats: s.Stats}
}
