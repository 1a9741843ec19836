package tarot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarotfutura/futura/internal/tarot"
)

func TestDrawThree(t *testing.T) {
	cards := tarot.Catalog()
	before := tarot.Catalog()

	for range 200 {
		s, err := tarot.DrawThree(cards)
		require.NoError(t, err)

		ids := s.IDs()
		assert.NotEqual(t, ids[0], ids[1])
		assert.NotEqual(t, ids[1], ids[2])
		assert.NotEqual(t, ids[0], ids[2])

		assert.Equal(t, tarot.Past, s[0].Position)
		assert.Equal(t, tarot.Present, s[1].Position)
		assert.Equal(t, tarot.Future, s[2].Position)
	}
	assert.Equal(t, before, cards, "input catalog must not be reordered")
}

func TestDrawThreeSmallCatalog(t *testing.T) {
	cards := tarot.Catalog()

	_, err := tarot.DrawThree(cards[:2])
	assert.ErrorIs(t, err, tarot.ErrInsufficientCatalog)

	_, err = tarot.DrawThree(nil)
	assert.ErrorIs(t, err, tarot.ErrInsufficientCatalog)

	s, err := tarot.DrawThree(cards[:3])
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{cards[0].ID, cards[1].ID, cards[2].ID}, s.IDs())
}

func TestDrawThreeUniform(t *testing.T) {
	const draws = 22000
	d := tarot.NewSeededDrawer(7, 11)
	cards := tarot.Catalog()

	counts := make([]map[string]int, 3)
	for i := range counts {
		counts[i] = map[string]int{}
	}
	for range draws {
		s, err := d.DrawThree(cards)
		require.NoError(t, err)
		for i, dc := range s {
			counts[i][dc.Card.ID]++
		}
	}

	want := draws / len(cards)
	for i, pos := range tarot.Positions {
		for _, c := range cards {
			got := counts[i][c.ID]
			assert.InDelta(t, want, got, float64(want)*0.3, "%s in %s", c.ID, pos)
		}
	}
}

func TestSeededDrawerIsDeterministic(t *testing.T) {
	cards := tarot.Catalog()
	a, err := tarot.NewSeededDrawer(1, 2).DrawThree(cards)
	require.NoError(t, err)
	b, err := tarot.NewSeededDrawer(1, 2).DrawThree(cards)
	require.NoError(t, err)
	assert.Equal(t, a.IDs(), b.IDs())
}
