package todo

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIgnoresBlankTitles(t *testing.T) {
	s := NewStore()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, ok := s.Create(title)
		assert.False(t, ok, "title %q", title)
	}
	assert.Empty(t, s.List())

	item, ok := s.Create("Buy milk")
	require.True(t, ok)
	assert.Equal(t, Item{ID: 1, Title: "Buy milk", IsCompleted: false}, item)
	assert.Equal(t, []Item{item}, s.List())
}

func TestCreateKeepsTitleAsGiven(t *testing.T) {
	s := NewStore()
	item, ok := s.Create("  padded  ")
	require.True(t, ok)
	assert.Equal(t, "  padded  ", item.Title)
}

func TestIDsAreNeverReused(t *testing.T) {
	s := NewStore()
	a, _ := s.Create("a")
	b, _ := s.Create("b")
	require.True(t, s.Delete(b.ID))

	c, _ := s.Create("c")
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 3, c.ID)
}

func TestDeleteMissingIDLeavesCollectionUnchanged(t *testing.T) {
	s := NewStore()
	s.Create("a")
	s.Create("b")
	before := s.List()

	assert.False(t, s.Delete(42))
	assert.Equal(t, before, s.List())
}

func TestDeleteRemovesOnlyTarget(t *testing.T) {
	s := NewStore()
	s.Create("a")
	s.Create("b")
	s.Create("c")

	require.True(t, s.Delete(2))
	assert.Equal(t, []Item{{ID: 1, Title: "a"}, {ID: 3, Title: "c"}}, s.List())
}

func TestToggleIsInvolution(t *testing.T) {
	s := NewStore()
	item, _ := s.Create("a")

	first, ok := s.Toggle(item.ID)
	require.True(t, ok)
	assert.True(t, first.IsCompleted)

	second, ok := s.Toggle(item.ID)
	require.True(t, ok)
	assert.False(t, second.IsCompleted)

	_, ok = s.Toggle(99)
	assert.False(t, ok)
}

func TestListReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Create("a")

	items := s.List()
	items[0].Title = "mutated"
	assert.Equal(t, "a", s.List()[0].Title)
}

func TestScenarioCreateToggleDelete(t *testing.T) {
	s := NewStore()
	s.Create("A")
	s.Create("B")
	assert.Equal(t, []Item{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}, s.List())

	s.Toggle(1)
	assert.Equal(t, []Item{{ID: 1, Title: "A", IsCompleted: true}, {ID: 2, Title: "B"}}, s.List())

	s.Delete(1)
	assert.Equal(t, []Item{{ID: 2, Title: "B"}}, s.List())
}

func TestConcurrentCreateAssignsUniqueIDs(t *testing.T) {
	s := NewStore()
	const workers, perWorker = 8, 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				item, _ := s.Create("task")
				s.Toggle(item.ID)
			}
		}()
	}
	wg.Wait()

	items := s.List()
	require.Len(t, items, workers*perWorker)
	seen := make(map[int]bool, len(items))
	for i, it := range items {
		assert.False(t, seen[it.ID], "duplicate id %d", it.ID)
		seen[it.ID] = true
		if i > 0 {
			assert.Greater(t, it.ID, items[i-1].ID)
		}
	}
}
