// Package ai is the boundary to the text-generation backend. The rest of
// the application depends on the Generator interface; the concrete Gemini
// client lives behind it so tests can substitute a stub.
package ai

import (
	"context"
	"strings"
)

// Task selects which API key budget a request is billed against.
type Task string

const (
	TaskCreation        Task = "creation"
	TaskTransformation  Task = "transformation"
	TaskCMS             Task = "cms"
	TaskPersonalization Task = "personalization"
)

// MaxInputSize caps prompt length before a request leaves the process.
const MaxInputSize = 50000

// Generator produces text for a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, task Task) (string, error)
}

// Keyring holds per-task API keys with a master fallback. Placeholder
// values that slipped in from an example .env are treated as absent.
type Keyring struct {
	Master  string
	PerTask map[Task]string
}

// KeyFor returns the key for a task, preferring the specialized key and
// falling back to the master key. Returns "" when neither is usable.
func (k Keyring) KeyFor(task Task) string {
	if key := k.PerTask[task]; usableKey(key) {
		return strings.TrimSpace(key)
	}
	if usableKey(k.Master) {
		return strings.TrimSpace(k.Master)
	}
	return ""
}

func usableKey(key string) bool {
	key = strings.TrimSpace(key)
	if len(key) <= 30 {
		return false
	}
	if strings.Contains(key, "YOUR_NEW_API_KEY") || strings.Contains(key, "PLACEHOLDER") {
		return false
	}
	return true
}

// Clip truncates input to MaxInputSize characters.
func Clip(s string) string {
	if len(s) > MaxInputSize {
		return s[:MaxInputSize]
	}
	return s
}
