// GiveBox - Donation Checkout Wizard
// Copyright (C) 2026 Cloud Exit B.V.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner animates a status line while a blocking call runs outside the TUI.
// It uses the same frames as the checkout screen.
type Spinner struct {
	w     io.Writer
	style spinner.Spinner
	msg   string

	quit chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewSpinner returns a spinner for msg drawing to the current Stdout.
func NewSpinner(msg string) *Spinner {
	return &Spinner{
		w:     Stdout,
		style: spinner.Dot,
		msg:   msg,
		quit:  make(chan struct{}),
	}
}

// Start draws frames until Stop is called.
func (s *Spinner) Start() {
	s.wg.Add(1)
	go s.run(time.Now())
}

func (s *Spinner) run(started time.Time) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.style.FPS)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.quit:
			fmt.Fprint(s.w, "\r\033[K")
			return
		case now := <-ticker.C:
			fmt.Fprint(s.w, s.line(frame, now.Sub(started)))
		}
	}
}

// line renders one frame. The elapsed time appears after the first second.
func (s *Spinner) line(frame int, elapsed time.Duration) string {
	glyph := s.style.Frames[frame%len(s.style.Frames)]
	out := fmt.Sprintf("\r%s%s%s %s", Cyan, glyph, NC, s.msg)
	if elapsed >= time.Second {
		out += fmt.Sprintf(" %s%ds%s", Dim, int(elapsed/time.Second), NC)
	}
	return out
}

// Stop clears the line. Extra calls are no-ops.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.quit) })
	s.wg.Wait()
}
