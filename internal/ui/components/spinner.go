// Package components holds the small prefab pieces the terminal UI widgets are built from.
package components

import (
	"strings"
	"sync"
)

// SpinnerDotSet is the default spinner charset, one braille frame per redraw.
const SpinnerDotSet = "⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏"

// Spinner cycles through a charset one rune at a time. Safe for concurrent use, since
// several widget goroutines may share one.
type Spinner struct {
	frames []string
	index  int
	lock   sync.Mutex
}

func NewSpinner(charset string) Spinner {
	return Spinner{
		frames: strings.Split(charset, ""),
	}
}

// Next returns the current frame and advances the spinner.
func (s *Spinner) Next() string {
	s.lock.Lock()
	defer s.lock.Unlock()

	frame := s.frames[s.index]
	s.index = (s.index + 1) % len(s.frames)
	return frame
}
