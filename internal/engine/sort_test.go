package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortItems(t *testing.T) {
	mk := func(id string, published *string) Item { return Item{ID: id, Published: published} }
	items := func() []Item {
		return []Item{
			mk("a", ptr("2 years ago")),
			mk("b", nil),
			mk("c", ptr("3 days ago")),
			mk("d", ptr("Premiere")),
			mk("e", ptr("1 hour ago")),
		}
	}

	t.Run("relevance keeps order", func(t *testing.T) {
		got := items()
		SortItems(got, SortRelevance)
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, itemIDs(got))
	})

	t.Run("date newest first, unknown last", func(t *testing.T) {
		got := items()
		SortItems(got, SortDate)
		assert.Equal(t, []string{"e", "c", "a", "b", "d"}, itemIDs(got))
	})
}

func TestLimitItems(t *testing.T) {
	in := []Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	assert.Len(t, LimitItems(in, 2), 2)
	assert.Len(t, LimitItems(in, 10), 3)
	assert.Len(t, LimitItems(in, 0), 3)
}

func TestResultSetClone(t *testing.T) {
	rs := ResultSet{Items: []Item{{ID: "a"}, {ID: "b"}}}
	c := rs.Clone()
	SortItems(c.Items, SortDate)
	c.Items[0].ID = "z"
	assert.Equal(t, "a", rs.Items[0].ID)
}
