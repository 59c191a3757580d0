package linkpub_test

import (
	"testing"

	"github.com/fwojciec/linkpub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostRotation_Next(t *testing.T) {
	t.Parallel()

	t.Run("rotates round-robin", func(t *testing.T) {
		t.Parallel()

		r, err := linkpub.NewHostRotation([]string{"h1", "h2", "h3"})
		require.NoError(t, err)

		got := []string{r.Next(), r.Next(), r.Next(), r.Next()}

		assert.Equal(t, []string{"h1", "h2", "h3", "h1"}, got)
		assert.Equal(t, []string{"h2", "h3", "h1"}, r.Hosts())
	})

	t.Run("covers every host evenly", func(t *testing.T) {
		t.Parallel()

		hosts := []string{"a", "b", "c", "d"}
		r, err := linkpub.NewHostRotation(hosts)
		require.NoError(t, err)

		counts := map[string]int{}
		for range 10 {
			counts[r.Next()]++
		}

		// 10 calls over 4 hosts: each host 2 or 3 times.
		for _, h := range hosts {
			assert.GreaterOrEqual(t, counts[h], 2, h)
			assert.LessOrEqual(t, counts[h], 3, h)
		}
	})

	t.Run("single host repeats", func(t *testing.T) {
		t.Parallel()

		r, err := linkpub.NewHostRotation([]string{"only"})
		require.NoError(t, err)

		assert.Equal(t, "only", r.Next())
		assert.Equal(t, "only", r.Next())
	})

	t.Run("does not alias the caller's slice", func(t *testing.T) {
		t.Parallel()

		hosts := []string{"h1", "h2"}
		r, err := linkpub.NewHostRotation(hosts)
		require.NoError(t, err)

		r.Next()

		assert.Equal(t, []string{"h1", "h2"}, hosts)
	})
}

func TestNewHostRotation_Invalid(t *testing.T) {
	t.Parallel()

	_, err := linkpub.NewHostRotation(nil)
	assert.Equal(t, linkpub.EINVALID, linkpub.ErrorCode(err))

	_, err = linkpub.NewHostRotation([]string{"h1", ""})
	assert.Equal(t, linkpub.EINVALID, linkpub.ErrorCode(err))
}
