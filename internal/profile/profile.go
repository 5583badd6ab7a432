// Package profile tracks per-user personalization state. Profiles are
// plain values and transitions are pure functions, so handlers never
// share mutable session state.
package profile

import (
	"time"
)

// historyCap bounds the recent-action list kept for behavior prediction.
const historyCap = 25

// Profile is one user's accumulated preferences.
type Profile struct {
	Username string `json:"username"`

	// Vote counts per observed value; the preferred value is the argmax.
	ToneCounts   map[string]int `json:"tone_counts"`
	LengthCounts map[string]int `json:"length_counts"`

	PreferredTone   string `json:"preferred_tone"`
	PreferredLength string `json:"preferred_length"`

	Interactions int       `json:"interactions"`
	History      []string  `json:"history"`
	LastSeen     time.Time `json:"last_seen"`
}

// Signal kinds.
const (
	SignalTone        = "tone"
	SignalLength      = "length"
	SignalInteraction = "interaction"
)

// Signal is one observed user action.
type Signal struct {
	Kind  string    // SignalTone, SignalLength or SignalInteraction
	Value string    // the tone/length chosen, or a free-form action label
	At    time.Time // zero means "now" is decided by the caller
}

// New returns an empty profile for a user.
func New(username string) Profile {
	return Profile{
		Username:     username,
		ToneCounts:   map[string]int{},
		LengthCounts: map[string]int{},
	}
}

// UpdatePreference folds one signal into the profile and returns the
// updated copy. The input profile is not modified.
func UpdatePreference(p Profile, sig Signal) Profile {
	out := p
	out.ToneCounts = copyCounts(p.ToneCounts)
	out.LengthCounts = copyCounts(p.LengthCounts)
	out.History = append([]string(nil), p.History...)

	switch sig.Kind {
	case SignalTone:
		if sig.Value != "" {
			out.ToneCounts[sig.Value]++
			out.PreferredTone = argmax(out.ToneCounts)
		}
	case SignalLength:
		if sig.Value != "" {
			out.LengthCounts[sig.Value]++
			out.PreferredLength = argmax(out.LengthCounts)
		}
	case SignalInteraction:
		if sig.Value != "" {
			out.History = append(out.History, sig.Value)
			if len(out.History) > historyCap {
				out.History = out.History[len(out.History)-historyCap:]
			}
		}
	}

	out.Interactions = p.Interactions + 1
	if !sig.At.IsZero() {
		out.LastSeen = sig.At
	}
	return out
}

// Preferences returns the profile as a flat map for prompt building.
func (p Profile) Preferences() map[string]string {
	out := map[string]string{}
	if p.PreferredTone != "" {
		out["tone"] = p.PreferredTone
	}
	if p.PreferredLength != "" {
		out["length"] = p.PreferredLength
	}
	return out
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// argmax picks the highest-count key, breaking ties by lexicographic
// order so the result is deterministic.
func argmax(counts map[string]int) string {
	best := ""
	bestN := -1
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}
