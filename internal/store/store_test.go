package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/session-server/internal/game"
	"github.com/robalobadob/wordle/apps/session-server/testing/suite"
)

func sampleState() *game.State {
	g := game.NewGame("crane")
	g.Guesses = []string{"slate"}
	g.Evaluations = [][]game.Evaluation{game.Evaluate("slate", "crane")}
	st := &game.State{Game: g}
	st.Stats.CurrentStreak = 2
	st.Stats.LongestStreak = 5
	st.Stats.GuessDistribution[3] = 4
	st.Stats.GuessDistribution[game.LossBucket] = 1
	return st
}

// runContract exercises the behavior every Store must share.
func runContract(t *testing.T, ctx context.Context, st Store) {
	t.Run("Load missing", func(t *testing.T) {
		_, err := st.Load(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Save then Load", func(t *testing.T) {
		// Given: a saved state
		want := sampleState()
		require.NoError(t, st.Save(ctx, "abc", want))

		// When: it is loaded back
		got, err := st.Load(ctx, "abc")

		// Then: it round-trips intact
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Save replaces", func(t *testing.T) {
		first := sampleState()
		require.NoError(t, st.Save(ctx, "replace", first))

		second := sampleState()
		second.Game.Guesses = append(second.Game.Guesses, "crane")
		second.Game.Evaluations = append(second.Game.Evaluations, game.Evaluate("crane", "crane"))
		second.Game.HasWon, second.Game.GameOver = true, true
		require.NoError(t, st.Save(ctx, "replace", second))

		got, err := st.Load(ctx, "replace")
		require.NoError(t, err)
		assert.True(t, got.Game.HasWon)
	})

	t.Run("Loaded state is a copy", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, "copy", sampleState()))

		got, err := st.Load(ctx, "copy")
		require.NoError(t, err)
		got.Game.Guesses[0] = "xxxxx"

		again, err := st.Load(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, "slate", again.Game.Guesses[0])
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, "gone", sampleState()))
		require.NoError(t, st.Delete(ctx, "gone"))

		_, err := st.Load(ctx, "gone")
		require.ErrorIs(t, err, ErrNotFound)

		// deleting twice is fine
		require.NoError(t, st.Delete(ctx, "gone"))
	})

	t.Run("Concurrent sessions", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				s := sampleState()
				s.Stats.CurrentStreak = i
				s.Stats.LongestStreak = i
				assert.NoError(t, st.Save(ctx, "c"+string(rune('a'+i)), s))
			}(i)
		}
		wg.Wait()

		for i := 0; i < 16; i++ {
			got, err := st.Load(ctx, "c"+string(rune('a'+i)))
			require.NoError(t, err)
			assert.Equal(t, i, got.Stats.CurrentStreak)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	t.Cleanup(func() { _ = st.Close() })

	runContract(t, context.Background(), st)
}

func TestMemoryStore_Corrupt(t *testing.T) {
	six := `["slate","pious","dumpy","fight","wreck","globe"]`
	sixEvals := `[[0,0,2,0,2],[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0],[0,2,1,1,0],[0,0,0,0,2]]`

	tests := []struct {
		name string
		raw  string
	}{
		{"truncated json", `{"game":`},
		{"rows disagree", `{"game":{"target_word":"crane","guess_matrix":["slate"],"evaluation_matrix":[]}}`},
		{"uppercase target", `{"game":{"target_word":"CRANE","guess_matrix":[],"evaluation_matrix":[]}}`},
		{"short guess", `{"game":{"target_word":"crane","guess_matrix":["sla"],"evaluation_matrix":[[0,0,2]]}}`},
		{"short evaluation row", `{"game":{"target_word":"crane","guess_matrix":["slate"],"evaluation_matrix":[[0,0,2]]}}`},
		{"evaluation does not match", `{"game":{"target_word":"crane","guess_matrix":["slate"],"evaluation_matrix":[[2,2,2,2,2]]}}`},
		{"six guesses still playing", `{"game":{"target_word":"crane","guess_matrix":` + six + `,"evaluation_matrix":` + sixEvals + `}}`},
		{"won without the target", `{"game":{"target_word":"crane","guess_matrix":["slate"],"evaluation_matrix":[[0,0,2,0,2]],"has_won":true,"game_over":true}}`},
		{"target guessed but not won", `{"game":{"target_word":"crane","guess_matrix":["crane"],"evaluation_matrix":[[2,2,2,2,2]]}}`},
		{"over too early", `{"game":{"target_word":"crane","guess_matrix":["slate"],"evaluation_matrix":[[0,0,2,0,2]],"game_over":true}}`},
		{"bad streaks", `{"game":{"target_word":"crane","guess_matrix":[],"evaluation_matrix":[]},"stats":{"current_streak":3,"longest_streak":1}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := NewMemoryStore().(*memory)
			st.sessions["bad"] = []byte(tc.raw)

			_, err := st.Load(context.Background(), "bad")

			require.ErrorIs(t, err, ErrCorrupt)
		})
	}

	t.Run("six guesses lost is valid", func(t *testing.T) {
		st := NewMemoryStore().(*memory)
		st.sessions["ok"] = []byte(`{"game":{"target_word":"crane","guess_matrix":` + six + `,"evaluation_matrix":` + sixEvals + `,"game_over":true}}`)

		got, err := st.Load(context.Background(), "ok")

		require.NoError(t, err)
		assert.True(t, got.Game.Lost())
	})
}

func newSQLite(t *testing.T) *SQLite {
	t.Helper()
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLiteStore(t *testing.T) {
	runContract(t, context.Background(), newSQLite(t))
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(context.Background(), "keep", sampleState()))
	require.NoError(t, first.Close())

	// When: the same file is opened again
	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	// Then: migrations are skipped and data survives
	_, err = second.Load(context.Background(), "keep")
	require.NoError(t, err)
}

func TestSQLiteStore_Corrupt(t *testing.T) {
	st := newSQLite(t)
	_, err := st.db.Exec(`INSERT INTO sessions (id, state, updated_at) VALUES ('bad', 'not json', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = st.Load(context.Background(), "bad")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestSQLiteStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	st.now = func() time.Time { return base.Add(-48 * time.Hour) }
	require.NoError(t, st.Save(ctx, "old", sampleState()))
	st.now = func() time.Time { return base }
	require.NoError(t, st.Save(ctx, "fresh", sampleState()))

	// When: sessions older than a day are purged
	n, err := st.PurgeExpired(ctx, 24*time.Hour)

	// Then: only the stale one is removed
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = st.Load(ctx, "old")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = st.Load(ctx, "fresh")
	require.NoError(t, err)
}

func TestRedisStore(t *testing.T) {
	ctx, s := suite.NewRedis(t)

	st := NewRedisStoreFromClient(s.Redis, time.Hour)

	runContract(t, ctx, st)

	t.Run("TTL applied", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, "ttl", sampleState()))

		ttl, err := s.Redis.TTL(ctx, redisKeyPrefix+"ttl").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Hour)
	})
}
