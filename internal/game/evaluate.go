package game

import "fmt"

// Evaluate scores guess against target using the two-pass algorithm.
//
// Pass 1 marks exact matches Correct and consumes those target letters.
// Pass 2 walks the remaining guess letters left to right; each one that
// still has an unconsumed instance in the target is marked Present and
// consumes the first such instance. Everything else stays Absent.
//
// A letter is therefore never reported more often than it occurs in the
// target. Both words must have the same length; callers validate that.
func Evaluate(guess, target string) []Evaluation {
	if len(guess) != len(target) {
		panic(fmt.Sprintf("game: evaluate length mismatch: guess %d, target %d", len(guess), len(target)))
	}
	n := len(target)
	res := make([]Evaluation, n)
	pool := []byte(target)
	consumed := make([]bool, n)

	for i := 0; i < n; i++ {
		if guess[i] == pool[i] {
			res[i] = Correct
			consumed[i] = true
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == Correct {
			continue
		}
		for j := 0; j < n; j++ {
			if !consumed[j] && pool[j] == guess[i] {
				res[i] = Present
				consumed[j] = true
				break
			}
		}
	}
	return res
}

