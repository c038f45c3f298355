// Package store persists per-session game state.
// Implementations are backed by memory, Redis or SQLite; all of them hold
// the state as JSON so any backend can read what another wrote.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/robalobadob/wordle/apps/session-server/internal/game"
)

var (
	// ErrNotFound is returned by Load when the session has no state yet.
	ErrNotFound = errors.New("session not found")
	// ErrCorrupt is returned by Load when stored state cannot be decoded.
	ErrCorrupt = errors.New("session state corrupt")
)

// Store defines the persistence interface for session state.
type Store interface {
	// Load returns the state saved for id.
	Load(ctx context.Context, id string) (*game.State, error)

	// Save persists or replaces the state for id.
	Save(ctx context.Context, id string, st *game.State) error

	// Delete removes id. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

func encode(st *game.State) ([]byte, error) {
	b, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("could not marshal state: %w", err)
	}
	return b, nil
}

func decode(b []byte) (*game.State, error) {
	var st game.State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := validate(&st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &st, nil
}

// validate rejects decoded state that breaks the game invariants.
func validate(st *game.State) error {
	g := st.Game
	if !game.ValidWord(g.TargetWord) {
		return errors.New("bad target word")
	}
	n := len(g.Guesses)
	if n != len(g.Evaluations) || n > game.MaxGuesses {
		return errors.New("guess and evaluation rows disagree")
	}
	for i, guess := range g.Guesses {
		if !game.ValidWord(guess) {
			return fmt.Errorf("bad guess in row %d", i)
		}
		if !slices.Equal(g.Evaluations[i], game.Evaluate(guess, g.TargetWord)) {
			return fmt.Errorf("evaluation row %d does not match its guess", i)
		}
		if guess == g.TargetWord && i != n-1 {
			return fmt.Errorf("guesses continue after a win in row %d", i)
		}
	}
	won := n > 0 && g.Guesses[n-1] == g.TargetWord
	if g.HasWon != won {
		return errors.New("has_won disagrees with guesses")
	}
	if g.GameOver != (won || n == game.MaxGuesses) {
		return errors.New("game_over disagrees with guesses")
	}

	s := st.Stats
	if s.CurrentStreak < 0 || s.LongestStreak < s.CurrentStreak {
		return errors.New("bad streaks")
	}
	for _, c := range s.GuessDistribution {
		if c < 0 {
			return errors.New("negative distribution bucket")
		}
	}
	return nil
}
