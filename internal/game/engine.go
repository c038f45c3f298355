// internal/game/engine.go
//
// Game session manager.
// Responsibilities:
//   - Create new games with a target drawn from a TargetProvider.
//   - Validate guesses (shape, dictionary membership, game not over).
//   - Score guesses with Evaluate and advance the game: playing → won/lost.
//   - Update Stats exactly once when a game concludes.
//
// The engine holds no per-player state. Game and Stats are passed in and
// returned by value; the caller owns storing them.
package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGameOver rejects a guess submitted after the game concluded.
	ErrGameOver = errors.New("game finished")
	// ErrInvalidGuess rejects a guess that is not WordLength letters a–z.
	ErrInvalidGuess = errors.New("invalid guess")
	// ErrNotInDictionary rejects a well-formed guess that is not a known word.
	ErrNotInDictionary = errors.New("not in word list")
	// ErrAlreadyPlayed refuses a new game while a periodic provider still
	// offers the target of the finished current game.
	ErrAlreadyPlayed = errors.New("target already played")
)

// Dictionary answers whether a word is a valid guess.
type Dictionary interface {
	Contains(word string) bool
}

// TargetProvider draws target words for new games.
type TargetProvider interface {
	RandomWord() (string, error)
}

// Periodic is implemented by providers that return the same target for a
// whole period, such as a word of the day.
type Periodic interface {
	Periodic() bool
}

// Engine applies game and stats transitions.
type Engine struct {
	dict    Dictionary
	targets TargetProvider
}

// NewEngine wires an Engine to its word collaborators.
func NewEngine(dict Dictionary, targets TargetProvider) *Engine {
	return &Engine{dict: dict, targets: targets}
}

// StartNewGame returns a fresh game with a new target word.
func (e *Engine) StartNewGame() (Game, error) {
	w, err := e.targets.RandomWord()
	if err != nil {
		return Game{}, fmt.Errorf("pick target: %w", err)
	}
	w = strings.ToLower(strings.TrimSpace(w))
	if !ValidWord(w) {
		return Game{}, fmt.Errorf("pick target: %q is not a %d-letter word", w, WordLength)
	}
	return NewGame(w), nil
}

// NextGame replaces cur with a fresh game. With a Periodic provider the
// current target is not dealt twice: an unfinished game for it is returned
// as is and a finished one yields ErrAlreadyPlayed.
func (e *Engine) NextGame(cur Game) (Game, error) {
	g, err := e.StartNewGame()
	if err != nil {
		return Game{}, err
	}
	if !e.periodic() || g.TargetWord != cur.TargetWord {
		return g, nil
	}
	if cur.GameOver {
		return cur, ErrAlreadyPlayed
	}
	return cur, nil
}

func (e *Engine) periodic() bool {
	p, ok := e.targets.(Periodic)
	return ok && p.Periodic()
}

// NewGame builds an in-progress game for a known target.
func NewGame(target string) Game {
	return Game{
		TargetWord:  target,
		Guesses:     []string{},
		Evaluations: [][]Evaluation{},
	}
}

// ResetStats returns zeroed statistics.
func (e *Engine) ResetStats() Stats { return Stats{} }

// SubmitGuess validates and applies guess to g, updating s when the game
// concludes. On rejection g and s are returned unchanged together with one
// of ErrGameOver, ErrInvalidGuess or ErrNotInDictionary.
//
// The returned values never share memory with the arguments.
func (e *Engine) SubmitGuess(g Game, s Stats, guess string) (Game, Stats, error) {
	if g.GameOver {
		return g, s, ErrGameOver
	}
	guess = strings.ToLower(strings.TrimSpace(guess))
	if !ValidWord(guess) {
		return g, s, ErrInvalidGuess
	}
	// the target is always guessable, even when the provider dealt a word
	// the dictionary has not seen
	if guess != g.TargetWord && !e.dict.Contains(guess) {
		return g, s, ErrNotInDictionary
	}

	next := g.Clone()
	next.Guesses = append(next.Guesses, guess)
	next.Evaluations = append(next.Evaluations, Evaluate(guess, next.TargetWord))
	next.HasWon = guess == next.TargetWord
	next.GameOver = next.HasWon || len(next.Guesses) >= MaxGuesses

	return next, recordResult(s, next), nil
}

// IsRejection reports whether err is one of the guess rejection errors.
func IsRejection(err error) bool {
	return errors.Is(err, ErrGameOver) ||
		errors.Is(err, ErrInvalidGuess) ||
		errors.Is(err, ErrNotInDictionary)
}

// recordResult folds a just-updated game into stats.
// In-progress games leave stats untouched.
func recordResult(s Stats, g Game) Stats {
	switch {
	case g.Lost():
		s.GuessDistribution[LossBucket]++
		s.CurrentStreak = 0
	case g.HasWon:
		s.GuessDistribution[len(g.Guesses)-1]++
		s.CurrentStreak++
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
	}
	return s
}

// ValidWord reports whether w is exactly WordLength lowercase a–z letters.
func ValidWord(w string) bool {
	if len(w) != WordLength {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}
