package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedRecentNewestFirst(t *testing.T) {
	f := NewFeed(3)
	f.Notify(LevelSuccess, "one")
	f.Notify(LevelInfo, "two")

	got := f.Recent(0)
	assert.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Message)
	assert.Equal(t, LevelInfo, got[0].Level)
	assert.Equal(t, "one", got[1].Message)
	assert.Greater(t, got[0].ID, got[1].ID)
}

func TestFeedWrapsAround(t *testing.T) {
	f := NewFeed(3)
	for _, m := range []string{"a", "b", "c", "d", "e"} {
		f.Notify(LevelInfo, m)
	}

	got := f.Recent(0)
	assert.Len(t, got, 3)
	assert.Equal(t, []string{"e", "d", "c"}, messages(got))

	assert.Equal(t, []string{"e", "d"}, messages(f.Recent(2)))
	assert.Equal(t, []string{"e", "d", "c"}, messages(f.Recent(10)))
}

func TestFeedDefaultCapacity(t *testing.T) {
	f := NewFeed(0)
	for i := 0; i < defaultCapacity+5; i++ {
		f.Notify(LevelInfo, "x")
	}
	assert.Len(t, f.Recent(0), defaultCapacity)
}

func messages(list []Notification) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.Message
	}
	return out
}
