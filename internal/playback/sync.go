// Package playback maps audio playback time onto document word positions.
// The playback collaborator supplies a cue timeline; the viewer consumes the
// resolved word index to style the highlighted word and, when the word's
// chunk is off-screen, to raise an external-sync navigation intent.
package playback

import (
	"sort"
	"time"
)

// Cue marks the moment a word starts being spoken.
type Cue struct {
	WordIndex int
	At        time.Duration
}

// Timeline is an immutable, time-ordered cue sequence for one document.
type Timeline struct {
	cues []Cue
}

// NewTimeline copies and sorts cues by time.
func NewTimeline(cues []Cue) *Timeline {
	sorted := make([]Cue, len(cues))
	copy(sorted, cues)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].At < sorted[j].At
	})
	return &Timeline{cues: sorted}
}

// Len returns the number of cues.
func (t *Timeline) Len() int {
	return len(t.cues)
}

// WordAt returns the word highlighted at the given elapsed playback time:
// the latest cue at or before it. Reports false before the first cue or on an
// empty timeline.
func (t *Timeline) WordAt(elapsed time.Duration) (int, bool) {
	if len(t.cues) == 0 {
		return 0, false
	}
	// First cue strictly after elapsed; the one before it is current.
	i := sort.Search(len(t.cues), func(i int) bool {
		return t.cues[i].At > elapsed
	})
	if i == 0 {
		return 0, false
	}
	return t.cues[i-1].WordIndex, true
}
