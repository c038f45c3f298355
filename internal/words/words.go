// internal/words/words.go
//
// Word list collaborators for the game engine.
//
// Responsibilities:
//   - Load answer and allowed guess lists from configured files or fall back
//     to the embedded defaults in package assets.
//   - List: in-memory set used for dictionary membership checks.
//   - Sampler: uniform target selection in a single pass over a list source,
//     without holding the list in memory (see sampler.go).
//
// Initialization behavior (Open):
//   1. If AnswersFile and AllowedFile are both set,
//      answers come from the first and guesses from the second.
//   2. If only AllowedFile is set,
//      that file is used for both answers and allowed guesses.
//   3. Otherwise the embedded assets are used.
//
// Constraints:
//   • Words must be 5 alphabetic letters (a–z); other lines are skipped.
//   • Lines starting with '#' are comments.
//   • Lists are normalized to lowercase.
//   • Answers are always allowed guesses.

package words

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/robalobadob/wordle/apps/session-server/assets"
)

// wordLength mirrors game.WordLength; words does not import game.
const wordLength = 5

// ErrEmpty is returned when a source yields no usable words.
var ErrEmpty = errors.New("words: list is empty")

// Source opens a line-oriented word list. It is called again for every
// pass so file-backed sources always see the current file contents.
type Source func() (io.ReadCloser, error)

// FileSource reads words from path.
func FileSource(path string) Source {
	return func() (io.ReadCloser, error) { return os.Open(path) }
}

// EmbeddedSource reads one of the lists compiled into package assets.
func EmbeddedSource(name string) Source {
	return func() (io.ReadCloser, error) { return assets.Open(name) }
}

// Config selects the list files. Empty paths mean "use embedded".
type Config struct {
	AnswersFile string
	AllowedFile string
}

// Lists bundles everything the server needs from the word lists.
type Lists struct {
	Answers       *List  // canonical answers
	Allowed       *List  // answers ∪ guesses
	AnswersSource Source // re-readable source of Answers for sampling
}

// Open resolves cfg into loaded lists.
func Open(cfg Config) (*Lists, error) {
	var ansSrc, allowSrc Source
	switch {
	case cfg.AnswersFile != "" && cfg.AllowedFile != "":
		ansSrc, allowSrc = FileSource(cfg.AnswersFile), FileSource(cfg.AllowedFile)
	case cfg.AllowedFile != "":
		ansSrc = FileSource(cfg.AllowedFile)
		allowSrc = ansSrc
	default:
		ansSrc, allowSrc = EmbeddedSource(assets.Answers), EmbeddedSource(assets.Allowed)
	}

	answers, err := Load(ansSrc)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	allowed, err := Load(allowSrc)
	if err != nil {
		return nil, fmt.Errorf("load allowed: %w", err)
	}
	return &Lists{
		Answers:       answers,
		Allowed:       allowed.Union(answers),
		AnswersSource: ansSrc,
	}, nil
}

// List is an ordered, de-duplicated word set.
type List struct {
	words []string
	set   map[string]struct{}
}

// NewList builds a list from words, dropping anything malformed.
func NewList(ws ...string) *List {
	l := &List{set: make(map[string]struct{}, len(ws))}
	for _, w := range ws {
		if w, ok := normalize(w); ok {
			l.add(w)
		}
	}
	return l
}

// Load reads every valid word from src. An empty result is an error.
func Load(src Source) (*List, error) {
	l := &List{set: make(map[string]struct{})}
	if err := scan(src, func(w string) { l.add(w) }); err != nil {
		return nil, err
	}
	if l.Len() == 0 {
		return nil, ErrEmpty
	}
	return l, nil
}

func (l *List) add(w string) {
	if _, ok := l.set[w]; ok {
		return
	}
	l.set[w] = struct{}{}
	l.words = append(l.words, w)
}

// Contains reports whether w is in the list, ignoring case and surrounding space.
func (l *List) Contains(w string) bool {
	_, ok := l.set[strings.ToLower(strings.TrimSpace(w))]
	return ok
}

// Len is the number of words.
func (l *List) Len() int { return len(l.words) }

// Words returns the words in load order. Callers must not modify it.
func (l *List) Words() []string { return l.words }

// At returns the i-th word in load order.
func (l *List) At(i int) string { return l.words[i] }

// Union returns a new list holding l's words followed by other's.
func (l *List) Union(other *List) *List {
	out := &List{set: make(map[string]struct{}, l.Len()+other.Len())}
	for _, w := range l.words {
		out.add(w)
	}
	for _, w := range other.words {
		out.add(w)
	}
	return out
}

// RandomWord picks a uniformly random word from the in-memory list.
func (l *List) RandomWord() (string, error) {
	if l.Len() == 0 {
		return "", ErrEmpty
	}
	return l.words[rand.Intn(l.Len())], nil
}

// scan calls fn for each valid word in src.
func scan(src Source, fn func(string)) error {
	rc, err := src()
	if err != nil {
		return err
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		if w, ok := normalize(sc.Text()); ok {
			fn(w)
		}
	}
	return sc.Err()
}

// normalize lowercases and trims a line, reporting whether it is a usable word.
func normalize(line string) (string, bool) {
	w := strings.ToLower(strings.TrimSpace(line))
	if w == "" || strings.HasPrefix(w, "#") || len(w) != wordLength {
		return "", false
	}
	return w, isAlpha(w)
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
