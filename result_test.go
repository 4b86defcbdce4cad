package htmlstream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResultIsSingleUse(t *testing.T) {
	t.Run("stream_then_stream", func(t *testing.T) {
		result, err := ParseString("<p></p>")
		require.NoError(t, err)
		defer result.Close()

		_, err = result.Stream()
		require.NoError(t, err)

		_, err = result.Stream()
		require.Error(t, err)
		assert.Equal(t, ErrConsumed, err)
	})

	t.Run("toarray_then_toarray", func(t *testing.T) {
		result, err := ParseString("<p></p>")
		require.NoError(t, err)

		_, err = result.ToArray()
		require.NoError(t, err)

		_, err = result.ToArray()
		require.Error(t, err)
		assert.Equal(t, ErrConsumed, err)
	})

	t.Run("toarray_then_stream", func(t *testing.T) {
		result, err := ParseString("x")
		require.NoError(t, err)

		_, err = result.ToArray()
		require.NoError(t, err)

		_, err = result.Stream()
		assert.True(t, errors.Is(err, ErrConsumed))
	})
}

func TestParseResultClose(t *testing.T) {
	t.Run("close_is_idempotent", func(t *testing.T) {
		result, err := ParseString("<div>x</div>")
		require.NoError(t, err)
		assert.NoError(t, result.Close())
		assert.NoError(t, result.Close())
	})

	t.Run("iteration_after_close_terminates", func(t *testing.T) {
		result, err := ParseString("<div><p>deep</p></div>")
		require.NoError(t, err)
		require.NoError(t, result.Close())

		stream, err := result.Stream()
		require.NoError(t, err)
		for stream.Next() {
			if el, ok := stream.Node().(*Element); ok && el.ChildStream() != nil {
				el.ChildStream().Close()
			}
		}
	})

	t.Run("close_after_full_iteration", func(t *testing.T) {
		result, err := ParseString("x")
		require.NoError(t, err)
		_, err = result.ToArray()
		require.NoError(t, err)
		assert.NoError(t, result.Close())
	})
}

func TestMaterializeEmptyInput(t *testing.T) {
	result, err := ParseString("")
	require.NoError(t, err)
	nodes, err := result.ToArray()
	require.NoError(t, err)
	assert.Empty(t, nodes)
}
