package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalogLoads(t *testing.T) {
	t.Parallel()
	items, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for _, it := range items {
		assert.Zero(t, it.CurrentCount, "catalog item %s starts at zero", it.ID)
		assert.False(t, it.IsUserAdded)
	}
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte(`
- {id: a, category: morning, count: 1, text: x}
- {id: a, category: evening, count: 1, text: y}
`))
	assert.ErrorContains(t, err, "duplicate")
}

func TestParseRejectsUnknownCategory(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte(`- {id: a, category: brunch, count: 1, text: x}`))
	assert.ErrorContains(t, err, "unknown category")
}
