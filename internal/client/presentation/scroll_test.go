package presentation

import (
	"fmt"
	"testing"

	"github.com/dmitrijs2005/roomchat/internal/client/models"
	"github.com/dmitrijs2005/roomchat/internal/client/services"
	"github.com/stretchr/testify/assert"
)

func listOf(n int, lastAuthor string) View {
	msgs := make([]models.Message, 0, n)
	for i := 0; i < n; i++ {
		author := "bob"
		if i == n-1 {
			author = lastAuthor
		}
		msgs = append(msgs, models.Message{ID: fmt.Sprintf("m%02d", i), Author: author, CreatedAt: ts(int64(i), 0)})
	}
	return Derive(Input{Gate: services.Allowed(), Live: true, Nickname: "ann", Messages: msgs})
}

func TestScroller_AtBottomFollowsNewMessages(t *testing.T) {
	s := NewScroller(100)
	assert.True(t, s.Apply(listOf(50, "bob")).ToNewest)

	s.SetDistance(0)
	act := s.Apply(listOf(51, "bob"))
	assert.True(t, act.ToNewest)
	assert.False(t, act.ShowJump)
}

func TestScroller_ScrolledUpShowsJumpInstead(t *testing.T) {
	s := NewScroller(100)
	s.Apply(listOf(50, "bob"))

	s.SetDistance(500)
	act := s.Apply(listOf(51, "bob"))
	assert.False(t, act.ToNewest)
	assert.True(t, act.ShowJump)
	assert.Equal(t, 1, act.Added)
	assert.Equal(t, 501, s.Distance(), "the same messages stay in view")

	// Recomputing without a new message keeps the affordance.
	act = s.Apply(listOf(51, "bob"))
	assert.False(t, act.ToNewest)
	assert.True(t, act.ShowJump)
	assert.Equal(t, 0, act.Added)
	assert.Equal(t, 501, s.Distance())

	act = s.Apply(listOf(54, "bob"))
	assert.Equal(t, 3, act.Added)
	assert.Equal(t, 504, s.Distance())

	act = s.JumpToNewest()
	assert.True(t, act.ToNewest)
	assert.False(t, act.ShowJump)
	assert.Equal(t, 0, s.Distance())
}

func TestScroller_OwnMessageAlwaysScrolls(t *testing.T) {
	s := NewScroller(100)
	s.Apply(listOf(50, "bob"))
	s.SetDistance(500)

	act := s.Apply(listOf(51, "ann"))
	assert.True(t, act.ToNewest)
	assert.False(t, act.ShowJump)
}

func TestScroller_WithinThresholdCounts(t *testing.T) {
	s := NewScroller(100)
	s.Apply(listOf(10, "bob"))

	s.SetDistance(100)
	assert.True(t, s.Apply(listOf(11, "bob")).ToNewest)

	s.SetDistance(101)
	assert.False(t, s.Apply(listOf(12, "bob")).ToNewest)

	s.SetDistance(-5)
	assert.Equal(t, 0, s.Distance())
	assert.True(t, s.Apply(listOf(12, "bob")).ToNewest)
}

func TestScroller_ReachingBottomHidesJump(t *testing.T) {
	s := NewScroller(10)
	s.Apply(listOf(5, "bob"))
	s.SetDistance(50)
	assert.True(t, s.Apply(listOf(6, "bob")).ShowJump)

	s.SetDistance(0)
	act := s.Apply(listOf(6, "bob"))
	assert.False(t, act.ShowJump)
}

func TestScroller_EmptyViewAndReset(t *testing.T) {
	s := NewScroller(10)
	assert.Equal(t, ScrollAction{}, s.Apply(View{Banner: BannerEmpty}))

	s.Apply(listOf(3, "bob"))
	s.SetDistance(40)
	s.Reset()
	assert.Equal(t, 0, s.Distance())
	assert.True(t, s.Apply(listOf(3, "bob")).ToNewest)
}

func TestScroller_HidingNewestIsNotAnArrival(t *testing.T) {
	msgs := make([]models.Message, 0, 20)
	for i := 0; i < 20; i++ {
		author := "bob"
		if i == 18 {
			author = "ann"
		}
		msgs = append(msgs, models.Message{ID: fmt.Sprintf("m%02d", i), Author: author, CreatedAt: ts(int64(i), 0)})
	}
	view := func(nick string, hidden map[string]struct{}) View {
		return Derive(Input{Gate: services.Allowed(), Live: true, Nickname: nick, Messages: msgs, Hidden: hidden})
	}
	hidden := map[string]struct{}{"m19": {}}

	for _, nick := range []string{"ann", "carol"} {
		s := NewScroller(3)
		s.Apply(view(nick, nil))
		s.SetDistance(10)

		act := s.Apply(view(nick, hidden))
		assert.False(t, act.ToNewest, nick)
		assert.False(t, act.ShowJump, nick)
		assert.Equal(t, 10, s.Distance(), nick)

		// Un-hiding brings back a message already seen.
		act = s.Apply(view(nick, nil))
		assert.False(t, act.ToNewest, nick)
		assert.False(t, act.ShowJump, nick)
	}
}
