package invidious

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickMirror(t *testing.T) {
	t.Parallel()

	t.Run("empty pool", func(t *testing.T) {
		t.Parallel()
		_, ok := pickMirror(nil)
		assert.False(t, ok)
	})

	t.Run("single mirror", func(t *testing.T) {
		t.Parallel()
		m, ok := pickMirror([]string{"https://iv.example/"})
		require.True(t, ok)
		assert.Equal(t, "https://iv.example", m)
	})

	t.Run("all mirrors reachable by the picker", func(t *testing.T) {
		t.Parallel()
		pool := []string{"https://a.example", "https://b.example", "https://c.example"}
		seen := map[string]bool{}
		for i := 0; i < 200; i++ {
			m, ok := pickMirror(pool)
			require.True(t, ok)
			seen[m] = true
		}
		assert.Len(t, seen, len(pool))
	})
}

func TestHostLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "iv.example", hostLabel("https://iv.example"))
	assert.Equal(t, "iv.example:8443", hostLabel("https://iv.example:8443/base"))
	assert.Equal(t, "invalid", hostLabel("not a url"))
}
