package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/session-server/internal/config"
	"github.com/robalobadob/wordle/apps/session-server/internal/daily"
	"github.com/robalobadob/wordle/apps/session-server/internal/game"
	"github.com/robalobadob/wordle/apps/session-server/internal/session"
	"github.com/robalobadob/wordle/apps/session-server/internal/store"
	"github.com/robalobadob/wordle/apps/session-server/internal/words"
)

type fixedTarget string

func (f fixedTarget) RandomWord() (string, error) { return string(f), nil }

func testConfig() *config.Config {
	return &config.Config{
		ClientOrigin: "http://localhost:5173",
		Session: config.Session{
			Secret:     "test-secret",
			CookieName: "wordle_session",
			TTL:        time.Hour,
		},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	answers := words.NewList("crane")
	allowed := words.NewList("crane", "slate", "pious", "dumpy", "fight", "wreck", "globe")
	lists := &words.Lists{Answers: answers, Allowed: allowed}
	svc := session.NewService(game.NewEngine(allowed, fixedTarget("crane")), store.NewMemoryStore())

	srv, err := New(svc, lists, testConfig())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ts, &http.Client{Jar: jar}
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res
}

type gameBody struct {
	GuessMatrix      [][]string `json:"guess_matrix"`
	EvaluationMatrix [][]int    `json:"evaluation_matrix"`
	HasWon           bool       `json:"has_won"`
	GameOver         bool       `json:"game_over"`
	TargetWord       *string    `json:"target_word"`
	Accepted         bool       `json:"accepted"`
	Reason           string     `json:"reason"`
}

type statsBody struct {
	CurrentStreak     int   `json:"current_streak"`
	LongestStreak     int   `json:"longest_streak"`
	GuessDistribution []int `json:"guess_distribution"`
}

func TestServer_Health(t *testing.T) {
	ts, c := newTestServer(t)

	res, err := c.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", res.Header.Get("Content-Type"))
}

func TestServer_IndexIssuesSessionCookie(t *testing.T) {
	ts, c := newTestServer(t)

	res, err := c.Get(ts.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	var found bool
	for _, ck := range res.Cookies() {
		if ck.Name == "wordle_session" {
			found = true
			assert.True(t, ck.HttpOnly)
		}
	}
	assert.True(t, found)
}

func TestServer_RequiresJSON(t *testing.T) {
	ts, c := newTestServer(t)

	res, err := c.Get(ts.URL + "/api/sync-game")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestServer_GameFlow(t *testing.T) {
	ts, c := newTestServer(t)

	// Given: a fresh session
	var g gameBody
	res := doJSON(t, c, http.MethodGet, ts.URL+"/api/sync-game", nil, &g)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, g.GuessMatrix)
	assert.Nil(t, g.TargetWord)

	// When: an unknown word is guessed
	res = doJSON(t, c, http.MethodPost, ts.URL+"/api/player-guess", "zzzzz", &g)

	// Then: it is rejected without changing the board
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.False(t, g.Accepted)
	assert.Equal(t, "not_in_word_list", g.Reason)
	assert.Empty(t, g.GuessMatrix)

	// When: a valid miss is guessed using the object form
	doJSON(t, c, http.MethodPost, ts.URL+"/api/player-guess", map[string]string{"guess": "slate"}, &g)
	assert.True(t, g.Accepted)
	assert.Equal(t, [][]string{{"s", "l", "a", "t", "e"}}, g.GuessMatrix)
	assert.Equal(t, [][]int{{0, 0, 2, 0, 2}}, g.EvaluationMatrix)
	assert.Nil(t, g.TargetWord)

	// When: the target is guessed
	doJSON(t, c, http.MethodPost, ts.URL+"/api/player-guess", "crane", &g)
	assert.True(t, g.Accepted)
	assert.True(t, g.HasWon)
	require.NotNil(t, g.TargetWord)
	assert.Equal(t, "crane", *g.TargetWord)

	// Then: a further guess is refused
	doJSON(t, c, http.MethodPost, ts.URL+"/api/player-guess", "slate", &g)
	assert.False(t, g.Accepted)
	assert.Equal(t, "game_over", g.Reason)

	var s statsBody
	doJSON(t, c, http.MethodGet, ts.URL+"/api/sync-stats", nil, &s)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, s.LongestStreak)
	assert.Equal(t, []int{0, 1, 0, 0, 0, 0, 0}, s.GuessDistribution)

	// When: the game is reset
	var status map[string]string
	doJSON(t, c, http.MethodPost, ts.URL+"/api/reset-game", nil, &status)
	assert.Equal(t, "success", status["status"])

	doJSON(t, c, http.MethodGet, ts.URL+"/api/sync-game", nil, &g)
	assert.Empty(t, g.GuessMatrix)
	assert.False(t, g.HasWon)

	// When: stats are reset
	doJSON(t, c, http.MethodPost, ts.URL+"/api/reset-stats", nil, &status)
	doJSON(t, c, http.MethodGet, ts.URL+"/api/sync-stats", nil, &s)
	assert.Zero(t, s.CurrentStreak)
	assert.Zero(t, s.LongestStreak)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, s.GuessDistribution)
}

func TestServer_BadGuessBody(t *testing.T) {
	ts, c := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/player-guess", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestServer_SessionsAreIsolated(t *testing.T) {
	ts, alice := newTestServer(t)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	bob := &http.Client{Jar: jar}

	var g gameBody
	doJSON(t, alice, http.MethodPost, ts.URL+"/api/player-guess", "slate", &g)
	require.True(t, g.Accepted)

	doJSON(t, bob, http.MethodGet, ts.URL+"/api/sync-game", nil, &g)
	assert.Empty(t, g.GuessMatrix)
}

func TestServer_NotFound(t *testing.T) {
	ts, c := newTestServer(t)

	res, err := c.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestServer_DebugWords(t *testing.T) {
	ts, c := newTestServer(t)

	res, err := c.Get(ts.URL + "/debug/words")
	require.NoError(t, err)
	defer res.Body.Close()

	var counts map[string]int
	require.NoError(t, json.NewDecoder(res.Body).Decode(&counts))
	assert.Equal(t, map[string]int{"answers": 1, "allowed": 7}, counts)
}

func TestServer_CORSPreflight(t *testing.T) {
	ts, c := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/player-guess", nil)
	require.NoError(t, err)
	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "http://localhost:5173", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_WordOfTheDayReplay(t *testing.T) {
	answers := words.NewList("crane")
	allowed := words.NewList("crane", "slate")
	engine := game.NewEngine(allowed, daily.NewPicker(answers, "salt"))
	srv, err := New(session.NewService(engine, store.NewMemoryStore()), &words.Lists{Answers: answers, Allowed: allowed}, testConfig())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &http.Client{Jar: jar}

	// Given: today's word is won
	var g gameBody
	doJSON(t, c, http.MethodPost, ts.URL+"/api/player-guess", "crane", &g)
	require.True(t, g.HasWon)

	// When: a new game is requested
	var body map[string]string
	res := doJSON(t, c, http.MethodPost, ts.URL+"/api/reset-game", nil, &body)

	// Then: it is refused
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, "already_played", body["error"])
}
