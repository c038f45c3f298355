// internal/session/service.go
//
// Session service: the single entry point the transport uses to read and
// mutate a player's Game and Stats.
//
// Every operation runs under a per-session lock so two requests for the
// same session never interleave their load/modify/save. Sessions with no
// stored state, or with state that fails to decode, start fresh.

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/session-server/internal/game"
	"github.com/robalobadob/wordle/apps/session-server/internal/store"
)

// Service composes the game engine with a session store.
type Service struct {
	engine *game.Engine
	store  store.Store
	locks  *keyedMutex
}

// NewService wires a Service.
func NewService(engine *game.Engine, st store.Store) *Service {
	return &Service{engine: engine, store: st, locks: newKeyedMutex()}
}

// GuessResult is the outcome of Guess.
type GuessResult struct {
	Game     game.GameView
	Accepted bool
	// Reason is the rejection cause when Accepted is false.
	Reason error
}

// Ensure initializes state for id if there is none.
func (s *Service) Ensure(ctx context.Context, id string) error {
	_, err := s.withState(ctx, id, unchanged)
	return err
}

// Game returns the current game view.
func (s *Service) Game(ctx context.Context, id string) (game.GameView, error) {
	st, err := s.withState(ctx, id, unchanged)
	if err != nil {
		return game.GameView{}, err
	}
	return st.Game.View(), nil
}

// Stats returns the current stats view.
func (s *Service) Stats(ctx context.Context, id string) (game.StatsView, error) {
	st, err := s.withState(ctx, id, unchanged)
	if err != nil {
		return game.StatsView{}, err
	}
	return st.Stats.View(), nil
}

// NewGame replaces the session's game with a fresh one. Stats are kept.
// With a word of the day a finished game is not replaced and
// game.ErrAlreadyPlayed is returned.
func (s *Service) NewGame(ctx context.Context, id string) (game.GameView, error) {
	st, err := s.withState(ctx, id, func(st *game.State) (bool, error) {
		g, err := s.engine.NextGame(st.Game)
		if err != nil {
			return false, err
		}
		st.Game = g
		return true, nil
	})
	if err != nil {
		return game.GameView{}, err
	}
	log.Debug().Str("session", id).Msg("new game")
	return st.Game.View(), nil
}

// ResetStats zeroes the session's stats. The game is kept.
func (s *Service) ResetStats(ctx context.Context, id string) (game.StatsView, error) {
	st, err := s.withState(ctx, id, func(st *game.State) (bool, error) {
		st.Stats = s.engine.ResetStats()
		return true, nil
	})
	if err != nil {
		return game.StatsView{}, err
	}
	return st.Stats.View(), nil
}

// Guess submits word for the session's current game. A rejected guess is
// not an error: it comes back with Accepted=false and the unchanged game.
func (s *Service) Guess(ctx context.Context, id, word string) (GuessResult, error) {
	var reason error
	st, err := s.withState(ctx, id, func(st *game.State) (bool, error) {
		g, stats, err := s.engine.SubmitGuess(st.Game, st.Stats, word)
		if err != nil {
			if game.IsRejection(err) {
				reason = err
				return false, nil
			}
			return false, err
		}
		st.Game, st.Stats = g, stats
		return true, nil
	})
	if err != nil {
		return GuessResult{}, err
	}

	ev := log.Debug().Str("session", id).Str("status", st.Game.Status())
	if reason != nil {
		ev.AnErr("reason", reason).Msg("guess rejected")
	} else {
		ev.Int("guesses", len(st.Game.Guesses)).Msg("guess accepted")
	}
	return GuessResult{Game: st.Game.View(), Accepted: reason == nil, Reason: reason}, nil
}

func unchanged(*game.State) (bool, error) { return false, nil }

// withState runs fn on the session's state under the session lock and
// saves the result when fn reports a change or the state was just created.
func (s *Service) withState(ctx context.Context, id string, fn func(*game.State) (bool, error)) (*game.State, error) {
	if id == "" {
		return nil, errors.New("session: empty id")
	}
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	defer unlock()

	st, fresh, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	changed, err := fn(st)
	if err != nil {
		return nil, err
	}
	if changed || fresh {
		if err := s.store.Save(ctx, id, st); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return st, nil
}

// load fetches state, creating it when missing or corrupt.
func (s *Service) load(ctx context.Context, id string) (*game.State, bool, error) {
	st, err := s.store.Load(ctx, id)
	switch {
	case err == nil:
		return st, false, nil
	case errors.Is(err, store.ErrCorrupt):
		log.Warn().Err(err).Str("session", id).Msg("discarding corrupt session state")
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, false, fmt.Errorf("load session: %w", err)
	}

	g, err := s.engine.StartNewGame()
	if err != nil {
		return nil, false, err
	}
	return &game.State{Game: g, Stats: s.engine.ResetStats()}, true, nil
}
