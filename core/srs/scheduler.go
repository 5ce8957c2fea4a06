package srs

import (
	"strconv"
	"strings"
	"time"
)

// ItemType is the kind of question.
type ItemType string

const (
	ItemMCQ   ItemType = "mcq"
	ItemShort ItemType = "short"
)

// MasteryStreak is the streak at which a question is mastered and never presented again.
const MasteryStreak = 3

// Intervals maps a new streak to the delay before the next review.
var Intervals = [MasteryStreak + 1]time.Duration{
	0: time.Minute,
	1: 10 * time.Minute,
	2: 24 * time.Hour,
	3: 365 * 24 * time.Hour,
}

// Correctness tags recorded on answers.
type Correctness string

const (
	Wrong  Correctness = "wrong"
	Once   Correctness = "once"
	Twice  Correctness = "twice"
	Thrice Correctness = "thrice"
)

var streakCorrectness = [MasteryStreak + 1]Correctness{Wrong, Once, Twice, Thrice}

// Question is the grading view of a workbook item.
type Question struct {
	Type      ItemType
	Options   []string
	AnswerKey string // option index for mcq, expected text for short; empty means absent
}

// Submission is a learner's response. Only the field matching the question type is read.
type Submission struct {
	SelectedOption *int
	ResponseText   *string
}

// ReviewState is the persisted review state of a (learner, question) pair.
// A nil *ReviewState means the question was never reviewed.
type ReviewState struct {
	Streak    int
	NextDueAt time.Time
}

// IsDue reports whether the question may be presented at now.
func (rs *ReviewState) IsDue(now time.Time) bool {
	return rs == nil || !now.Before(rs.NextDueAt)
}

// Mastered reports whether the question reached MasteryStreak.
func (rs *ReviewState) Mastered() bool {
	return rs != nil && rs.Streak >= MasteryStreak
}

func (rs *ReviewState) streak() int {
	if rs == nil {
		return 0
	}
	return rs.Streak
}

// Outcome is the decision taken for one submission.
type Outcome struct {
	Correct   bool
	Streak    int
	NextDueAt time.Time
}

// State returns the review state to persist.
func (o Outcome) State() ReviewState {
	return ReviewState{Streak: o.Streak, NextDueAt: o.NextDueAt}
}

// Correctness returns the tag recorded on the answer.
func (o Outcome) Correctness() Correctness {
	if !o.Correct {
		return Wrong
	}
	return streakCorrectness[clampStreak(o.Streak)]
}

// Grade decides whether sub answers q. A missing or malformed answer key, or a missing
// submission field, is graded incorrect.
func Grade(q Question, sub Submission) bool {
	key := strings.TrimSpace(q.AnswerKey)
	if key == "" {
		return false
	}

	switch q.Type {
	case ItemMCQ:
		if sub.SelectedOption == nil {
			return false
		}
		want, err := strconv.Atoi(key)
		if err != nil {
			return false
		}
		return *sub.SelectedOption == want
	case ItemShort:
		if sub.ResponseText == nil {
			return false
		}
		return normalize(*sub.ResponseText) == normalize(key)
	default:
		return false
	}
}

// normalize lower-cases and trims s. Inner whitespace and accents are kept.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Advance returns the new streak and next due time after a graded submission.
func Advance(streak int, correct bool, now time.Time) (int, time.Time) {
	next := 0
	if correct {
		next = clampStreak(streak + 1)
	}
	return next, now.Add(Intervals[next])
}

// Schedule grades sub against q and computes the next state from the current one.
func Schedule(q Question, sub Submission, current *ReviewState, now time.Time) Outcome {
	correct := Grade(q, sub)
	streak, due := Advance(current.streak(), correct, now)
	return Outcome{Correct: correct, Streak: streak, NextDueAt: due}
}

func clampStreak(streak int) int {
	switch {
	case streak < 0:
		return 0
	case streak > MasteryStreak:
		return MasteryStreak
	default:
		return streak
	}
}
