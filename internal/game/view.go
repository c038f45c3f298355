package game

// GameView is the client-facing projection of a Game.
// TargetWord is nil until the game is over.
type GameView struct {
	GuessMatrix      [][]string     `json:"guess_matrix"`
	EvaluationMatrix [][]Evaluation `json:"evaluation_matrix"`
	HasWon           bool           `json:"has_won"`
	GameOver         bool           `json:"game_over"`
	TargetWord       *string        `json:"target_word"`
}

// StatsView is the client-facing projection of Stats.
type StatsView struct {
	CurrentStreak     int   `json:"current_streak"`
	LongestStreak     int   `json:"longest_streak"`
	GuessDistribution []int `json:"guess_distribution"`
}

// View projects g for the client. Guesses are split into letters, one row
// per guess, matching the board layout.
func (g Game) View() GameView {
	v := GameView{
		GuessMatrix:      make([][]string, len(g.Guesses)),
		EvaluationMatrix: make([][]Evaluation, len(g.Evaluations)),
		HasWon:           g.HasWon,
		GameOver:         g.GameOver,
	}
	for i, w := range g.Guesses {
		row := make([]string, len(w))
		for j := 0; j < len(w); j++ {
			row[j] = string(w[j])
		}
		v.GuessMatrix[i] = row
	}
	for i, ev := range g.Evaluations {
		v.EvaluationMatrix[i] = append([]Evaluation(nil), ev...)
	}
	if g.GameOver {
		t := g.TargetWord
		v.TargetWord = &t
	}
	return v
}

// View projects s for the client.
func (s Stats) View() StatsView {
	return StatsView{
		CurrentStreak:     s.CurrentStreak,
		LongestStreak:     s.LongestStreak,
		GuessDistribution: append([]int(nil), s.GuessDistribution[:]...),
	}
}
