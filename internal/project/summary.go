package project

import (
	"fmt"
)

// Outcome describes what happened to one file during an apply.
type Outcome string

// File outcomes
const (
	OutcomeCreated     Outcome = "created"
	OutcomeUnchanged   Outcome = "unchanged"
	OutcomeKept        Outcome = "kept"
	OutcomeOverwritten Outcome = "overwritten"
	// OutcomeConflict is only reported by dry runs, where conflicts are not resolved.
	OutcomeConflict Outcome = "conflict"
)

// FileResult is the outcome for one rendered file.
type FileResult struct {
	Path    string
	Outcome Outcome
}

// Summary tracks the directories and files touched by one apply.
// This type is not thread-safe and should not be used concurrently.
type Summary struct {
	TargetRoot  string
	Directories []string
	Files       []FileResult
}

// NewSummary creates a new summary for an apply to targetRoot
func NewSummary(targetRoot string) *Summary {
	return &Summary{
		TargetRoot:  targetRoot,
		Directories: []string{},
		Files:       []FileResult{},
	}
}

// AddDirectory records a directory ensured under the target
func (s *Summary) AddDirectory(path string) {
	s.Directories = append(s.Directories, path)
}

// AddFile records the outcome of a file
func (s *Summary) AddFile(path string, outcome Outcome) {
	s.Files = append(s.Files, FileResult{Path: path, Outcome: outcome})
}

// Count returns the number of files with the given outcome
func (s *Summary) Count(outcome Outcome) int {
	n := 0
	for _, f := range s.Files {
		if f.Outcome == outcome {
			n++
		}
	}

	return n
}

// OutcomeOf returns the recorded outcome for path and whether it was recorded
func (s *Summary) OutcomeOf(path string) (Outcome, bool) {
	for _, f := range s.Files {
		if f.Path == path {
			return f.Outcome, true
		}
	}

	return "", false
}

func (s *Summary) String() string {
	msg := fmt.Sprintf("%d created, %d unchanged, %d kept, %d overwritten",
		s.Count(OutcomeCreated), s.Count(OutcomeUnchanged),
		s.Count(OutcomeKept), s.Count(OutcomeOverwritten))

	if n := s.Count(OutcomeConflict); n > 0 {
		msg += fmt.Sprintf(", %d conflicting", n)
	}

	return msg
}
