// Package srs implements the spaced-repetition rules of the study flow.
//
// The Scheduler (Grade, Advance, Schedule) decides whether a submission is correct and
// computes the next review state of a question. The Selector (Select, Progress, Started)
// picks the next question to present from an ordered set and measures mastery.
//
// Everything here is a pure function of its inputs: the current time is always passed in.
package srs
