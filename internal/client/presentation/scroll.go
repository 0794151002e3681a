package presentation

import "github.com/dmitrijs2005/roomchat/internal/client/models"

// ScrollAction tells the renderer what to do with the viewport.
type ScrollAction struct {
	// ToNewest asks for a smooth scroll to the newest message.
	ToNewest bool

	// ShowJump shows the "jump to newest" affordance.
	ShowJump bool

	// Added is how many messages arrived below a viewport that stays put.
	// The renderer moves its offset up by as many to keep the same
	// messages on screen.
	Added int
}

// Scroller applies the auto-scroll rule. Distances are counted in messages
// from the newest one.
type Scroller struct {
	Threshold int

	distance  int
	newestID  string
	newestAt  *models.Timestamp
	jumpShown bool
}

func NewScroller(threshold int) *Scroller {
	return &Scroller{Threshold: threshold}
}

// SetDistance records how far the viewport is from the bottom. Reaching the
// bottom zone hides the affordance.
func (s *Scroller) SetDistance(distanceFromBottom int) {
	if distanceFromBottom < 0 {
		distanceFromBottom = 0
	}
	s.distance = distanceFromBottom
	if s.nearBottom() {
		s.jumpShown = false
	}
}

func (s *Scroller) Distance() int { return s.distance }

// Apply runs after every recomputation of v. It scrolls when the viewport is
// near the bottom or when the newest message is the user's own; otherwise a
// newly arrived message only raises the affordance.
func (s *Scroller) Apply(v View) ScrollAction {
	newest, ok := v.Newest()
	if !ok {
		return ScrollAction{}
	}

	added := s.arrivals(v)

	if s.nearBottom() || (added > 0 && newest.Own) {
		s.distance = 0
		s.jumpShown = false
		return ScrollAction{ToNewest: true}
	}
	if added > 0 {
		s.distance += added
		s.jumpShown = true
	}
	return ScrollAction{ShowJump: s.jumpShown, Added: added}
}

// arrivals counts the messages of v newer than every message seen so far
// and records the newest one. Hiding the newest message exposes an older
// one, which is not an arrival.
func (s *Scroller) arrivals(v View) int {
	n := 0
	var latest *models.Timestamp
	for _, b := range v.Bubbles {
		at := b.Message.CreatedAt
		if at == nil {
			continue
		}
		if s.newestAt == nil || at.Compare(*s.newestAt) > 0 {
			n++
		}
		if latest == nil || at.Compare(*latest) > 0 {
			latest = at
		}
	}
	if n > 0 {
		t := *latest
		s.newestAt = &t
	}

	newest, _ := v.Newest()
	if newest.Message.ID != s.newestID {
		if newest.Message.CreatedAt == nil {
			n++
		}
		s.newestID = newest.Message.ID
	}
	return n
}

// JumpToNewest is the affordance being used.
func (s *Scroller) JumpToNewest() ScrollAction {
	s.distance = 0
	s.jumpShown = false
	return ScrollAction{ToNewest: true}
}

// Reset forgets the newest message and returns to the bottom.
func (s *Scroller) Reset() {
	s.distance = 0
	s.newestID = ""
	s.newestAt = nil
	s.jumpShown = false
}

func (s *Scroller) nearBottom() bool {
	return s.distance <= s.Threshold
}
