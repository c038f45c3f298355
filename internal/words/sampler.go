package words

import "math/rand"

// Sampler draws target words from a Source using reservoir sampling.
// Each call makes one pass over the source; the k-th valid word replaces
// the current pick with probability 1/k, so every word is equally likely
// and only one word is held at a time.
type Sampler struct {
	src  Source
	intn func(n int) int
}

// NewSampler builds a Sampler backed by the process-wide random source.
func NewSampler(src Source) *Sampler {
	return &Sampler{src: src, intn: rand.Intn}
}

// RandomWord returns one uniformly chosen word from the source.
func (s *Sampler) RandomWord() (string, error) {
	var (
		pick  string
		count int
	)
	err := scan(s.src, func(w string) {
		count++
		if s.intn(count) == 0 {
			pick = w
		}
	})
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "", ErrEmpty
	}
	return pick, nil
}
