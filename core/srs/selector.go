package srs

import (
	"math"
	"time"
)

// Card pairs a question id with its review state, nil if never reviewed.
type Card struct {
	ID    string
	State *ReviewState
}

// Select returns the index of the first card, in the given order, that is not mastered and is due at now.
// It returns false when no question is due.
func Select(cards []Card, now time.Time) (int, bool) {
	for i, c := range cards {
		if !c.State.Mastered() && c.State.IsDue(now) {
			return i, true
		}
	}
	return -1, false
}

// Progress is the rounded percentage of mastered cards, 0 when there are none.
func Progress(cards []Card) int {
	if len(cards) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(Mastered(cards)) / float64(len(cards))))
}

// Mastered counts mastered cards.
func Mastered(cards []Card) int {
	var n int
	for _, c := range cards {
		if c.State.Mastered() {
			n++
		}
	}
	return n
}

// Started reports whether any card has been answered correctly at least once.
func Started(cards []Card) bool {
	for _, c := range cards {
		if c.State.streak() >= 1 {
			return true
		}
	}
	return false
}

// DueCount counts the cards that Select could present at now.
func DueCount(cards []Card, now time.Time) int {
	var n int
	for _, c := range cards {
		if !c.State.Mastered() && c.State.IsDue(now) {
			n++
		}
	}
	return n
}
