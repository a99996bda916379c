package determinism

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsStable(t *testing.T) {
	g := NewIDGenerator("recommendation")

	a := g.Generate("reserved-instance", "ec2", "web")
	b := NewIDGenerator("recommendation").Generate("reserved-instance", "ec2", "web")
	assert.Equal(t, a, b)

	parsed, err := uuid.Parse(a.String())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

func TestGenerateSeparatesParts(t *testing.T) {
	g := NewIDGenerator("recommendation")
	assert.NotEqual(t, g.Generate("ab", "c"), g.Generate("a", "bc"))
	assert.NotEqual(t, g.Generate("x"), NewIDGenerator("variant").Generate("x"))
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"storage": 1, "compute": 2, "networking": 3}
	assert.Equal(t, []string{"compute", "networking", "storage"}, SortedKeys(m))

	var visited []string
	RangeMapSorted(m, func(k string, _ int) bool {
		visited = append(visited, k)
		return len(visited) < 2
	})
	assert.Equal(t, []string{"compute", "networking"}, visited)
}

func TestSortSliceIsStable(t *testing.T) {
	type item struct {
		key   int
		label string
	}
	items := []item{{2, "a"}, {1, "b"}, {2, "c"}, {1, "d"}}
	SortSlice(items, func(a, b item) bool { return a.key < b.key })
	assert.Equal(t, []item{{1, "b"}, {1, "d"}, {2, "a"}, {2, "c"}}, items)
}

func TestContentHash(t *testing.T) {
	h := ComputeHash([]byte("services: []"))
	assert.Len(t, h.Hex(), 64)
	assert.Equal(t, h.Hex()[:12], h.Short())
	assert.NotEqual(t, h, ComputeHash([]byte("services: [ec2]")))
}
