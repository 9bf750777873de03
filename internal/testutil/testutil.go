// Package testutil provides shared helpers for package tests.
package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// ErrNoAnswers is returned by ScriptedPrompter once its answers are exhausted.
var ErrNoAnswers = errors.New("no scripted answers left")

// Question records one call made to a ScriptedPrompter.
type Question struct {
	Label   string
	Default string
}

// ScriptedPrompter returns queued answers in order and records every question.
type ScriptedPrompter struct {
	Answers []string
	Asked   []Question
	Err     error
}

// NewScriptedPrompter creates a ScriptedPrompter answering with answers in order.
func NewScriptedPrompter(answers ...string) *ScriptedPrompter {
	return &ScriptedPrompter{Answers: answers}
}

// Ask records the question and pops the next answer.
func (p *ScriptedPrompter) Ask(label, defaultValue string) (string, error) {
	p.Asked = append(p.Asked, Question{Label: label, Default: defaultValue})

	if p.Err != nil {
		return "", p.Err
	}
	if len(p.Answers) == 0 {
		return "", ErrNoAnswers
	}

	answer := p.Answers[0]
	p.Answers = p.Answers[1:]

	return answer, nil
}

// MapLookup returns an environment lookup function backed by env.
func MapLookup(env map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
}

// WriteTree creates files under root from a relative path to content mapping.
// Paths ending in "/" create empty directories.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))

		if rel[len(rel)-1] == '/' {
			if err := os.MkdirAll(path, 0750); err != nil {
				t.Fatalf("failed to create directory %s: %v", rel, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			t.Fatalf("failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
}

// ReadFile returns the content of root/rel, failing the test if it cannot be read.
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel))) //nolint:gosec // test helper
	if err != nil {
		t.Fatalf("failed to read %s: %v", rel, err)
	}

	return string(data)
}
