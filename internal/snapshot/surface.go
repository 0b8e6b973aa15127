package snapshot

import (
	"slices"
	"sync"

	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

// Surface is a widget's private render target. Regions are fields of the
// view; concurrent updates are last-write-wins. Once closed, updates are
// dropped.
//
// Subscribers see frames in commit order. A frame superseded before it could
// be delivered is skipped, so the last frame a subscriber sees is always the
// committed view.
type Surface struct {
	mu       sync.Mutex
	closed   bool
	view     models.WidgetView
	fonts    []string
	commits  int
	onCommit []func(models.WidgetView)

	deliverMu sync.Mutex
	delivered int
}

func newSurface() *Surface {
	return &Surface{}
}

// update applies fn and commits a frame. It reports false when closed.
func (s *Surface) update(fn func(v *models.WidgetView)) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	fn(&s.view)
	s.commits++
	s.mu.Unlock()

	s.deliver()
	return true
}

// deliver hands the newest frame to subscribers unless a later call already
// has. Subscribers must not update the surface.
func (s *Surface) deliver() {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	seq, view := s.commits, s.view
	subs := slices.Clone(s.onCommit)
	s.mu.Unlock()

	if seq <= s.delivered {
		return
	}
	s.delivered = seq
	for _, sub := range subs {
		sub(view)
	}
}

func (s *Surface) addFont(href string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.fonts = append(s.fonts, href)
	}
}

func (s *Surface) close() {
	s.mu.Lock()
	s.closed = true
	s.onCommit = nil
	s.mu.Unlock()
}

func (s *Surface) View() models.WidgetView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Surface) Fonts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.fonts)
}

// Commits counts rendered frames.
func (s *Surface) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// OnCommit registers fn to receive the view after every frame.
func (s *Surface) OnCommit(fn func(models.WidgetView)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.onCommit = append(s.onCommit, fn)
	}
}
