package engine

import "time"

type trailEntry struct {
	pos Position
	at  time.Time
}

// Trail records recently vacated cells, oldest first.
type Trail struct {
	entries []trailEntry
}

// Push appends the vacated position stamped with now
func (t *Trail) Push(p Position, now time.Time) {
	t.entries = append(t.entries, trailEntry{pos: p, at: now})
}

// Prune drops every entry whose age has reached fade
func (t *Trail) Prune(now time.Time, fade time.Duration) {
	kept := t.entries[:0]
	for _, e := range t.entries {
		if now.Sub(e.at) < fade {
			kept = append(kept, e)
		}
	}
	// release references held past the new length
	for i := len(kept); i < len(t.entries); i++ {
		t.entries[i] = trailEntry{}
	}
	t.entries = kept
}

func (t *Trail) Clear() {
	t.entries = nil
}

func (t *Trail) Len() int {
	return len(t.entries)
}

// Oldest returns the age of the oldest entry at now, or zero when empty
func (t *Trail) Oldest(now time.Time) time.Duration {
	if len(t.entries) == 0 {
		return 0
	}
	return now.Sub(t.entries[0].at)
}

// Samples returns the live entries with their opacity at now.
// The most recent entry starts at 0.5, the one before at 0.25, older ones at 0,
// and each fades linearly to zero over fade.
func (t *Trail) Samples(now time.Time, fade time.Duration) []TrailSample {
	live := make([]trailEntry, 0, len(t.entries))
	for _, e := range t.entries {
		if now.Sub(e.at) < fade {
			live = append(live, e)
		}
	}

	samples := make([]TrailSample, len(live))
	for i, e := range live {
		samples[i] = TrailSample{
			Position: e.pos,
			Opacity:  trailOpacity(len(live)-1-i, now.Sub(e.at), fade),
		}
	}
	return samples
}

// trailOpacity computes the opacity for an entry by recency rank (0 = newest)
func trailOpacity(rank int, age, fade time.Duration) float64 {
	var base float64
	switch rank {
	case 0:
		base = 0.5
	case 1:
		base = 0.25
	default:
		return 0
	}
	if fade <= 0 || age >= fade {
		return 0
	}
	if age < 0 {
		age = 0
	}
	return base * (1 - float64(age)/float64(fade))
}
