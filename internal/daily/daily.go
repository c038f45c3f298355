// Package daily picks one target word per calendar day, the same for every
// player, derived from HMAC(salt, YYYY-MM-DD).
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"time"
)

// Answers is the ordered answer list the picker indexes into.
type Answers interface {
	Len() int
	At(i int) string
}

// Picker is a game.TargetProvider returning the word of the day.
type Picker struct {
	answers Answers
	salt    string
	now     func() time.Time
}

// NewPicker builds a Picker over answers keyed by salt.
func NewPicker(answers Answers, salt string) *Picker {
	return &Picker{answers: answers, salt: salt, now: time.Now}
}

// WithClock replaces the time source (tests).
func (p *Picker) WithClock(now func() time.Time) *Picker {
	if now != nil {
		p.now = now
	}
	return p
}

// RandomWord returns today's word.
func (p *Picker) RandomWord() (string, error) {
	n := p.answers.Len()
	if n == 0 {
		return "", errors.New("daily: no answers loaded")
	}
	return p.answers.At(WordIndex(p.now(), p.salt, n)), nil
}

// Periodic reports that the target only changes once per UTC day.
func (p *Picker) Periodic() bool { return true }

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % answersLen.
func WordIndex(date time.Time, salt string, answersLen int) int {
	if answersLen <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(answersLen))
}
