package migration

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func Test_RangeCanBeParsed(t *testing.T) {
	t.Parallel()

	t.Run("both bounds", func(t *testing.T) {
		r, err := ParseRange("0.0.1^0.0.2")
		require.NoError(t, err)
		require.NotNil(t, r.First)
		require.NotNil(t, r.Last)

		assert.Equal(t, "0.0.1", r.First.String())
		assert.Equal(t, "0.0.2", r.Last.String())
		assert.Equal(t, "0.0.1^0.0.2", r.String())
	})

	t.Run("empty string is unbounded", func(t *testing.T) {
		r, err := ParseRange("")
		require.NoError(t, err)
		assert.Nil(t, r.First)
		assert.Nil(t, r.Last)
		assert.False(t, r.IsBounded())
	})

	t.Run("open lower bound", func(t *testing.T) {
		r, err := ParseRange("^1.0.0")
		require.NoError(t, err)
		assert.Nil(t, r.First)
		require.NotNil(t, r.Last)
		assert.Equal(t, "1.0.0", r.Last.String())
	})

	t.Run("open upper bound", func(t *testing.T) {
		r, err := ParseRange("1.0.0^")
		require.NoError(t, err)
		require.NotNil(t, r.First)
		assert.Nil(t, r.Last)
	})
}

func Test_InvalidRangesAreRejected(t *testing.T) {
	t.Parallel()

	tt := []struct {
		in  string
		err error
	}{
		{in: "1^2^3", err: ErrInvalidRange},
		{in: "0.0.1", err: ErrInvalidRange},
		{in: "0.0.1^^0.0.2", err: ErrInvalidRange},
		{in: "a.b.c^0.0.2", err: ErrInvalidVersionName},
		{in: "0.0.1^1.2", err: ErrInvalidVersionName},
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			_, err := ParseRange(tc.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.err))
		})
	}
}

func Test_RangeValidationDependsOnDirection(t *testing.T) {
	t.Parallel()

	low, high := MustParseVersion("0.0.1"), MustParseVersion("0.0.2")

	t.Run("up requires last to be greater or equal to first", func(t *testing.T) {
		assert.NoError(t, NewRange(low, high).Validate(Up))
		assert.NoError(t, NewRange(low, low).Validate(Up))

		err := NewRange(high, low).Validate(Up)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidRange))
	})

	t.Run("down requires first to be greater or equal to last", func(t *testing.T) {
		assert.NoError(t, NewRange(high, low).Validate(Down))

		err := NewRange(low, high).Validate(Down)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidRange))
	})

	t.Run("half open ranges are always valid", func(t *testing.T) {
		assert.NoError(t, Range{First: &high}.Validate(Up))
		assert.NoError(t, Range{Last: &low}.Validate(Down))
		assert.NoError(t, Range{}.Validate(Down))
	})
}

func Test_RangeContains(t *testing.T) {
	t.Parallel()

	v1, v2, v3, v4 := MustParseVersion("0.0.1"), MustParseVersion("0.0.2"), MustParseVersion("0.0.3"), MustParseVersion("0.0.4")

	t.Run("up range excludes versions outside first and last", func(t *testing.T) {
		r := NewRange(v2, v3)
		assert.False(t, r.Contains(Up, v1))
		assert.True(t, r.Contains(Up, v2))
		assert.True(t, r.Contains(Up, v3))
		assert.False(t, r.Contains(Up, v4))
	})

	t.Run("down range is closer to head first", func(t *testing.T) {
		r := NewRange(v3, v2)
		assert.False(t, r.Contains(Down, v4))
		assert.True(t, r.Contains(Down, v3))
		assert.True(t, r.Contains(Down, v2))
		assert.False(t, r.Contains(Down, v1))
	})

	t.Run("unbounded range contains everything", func(t *testing.T) {
		var r Range
		for _, v := range []Version{v1, v2, v3, v4} {
			assert.True(t, r.Contains(Up, v))
			assert.True(t, r.Contains(Down, v))
		}
	})
}

func Test_DirectionCanBeParsed(t *testing.T) {
	t.Parallel()

	d, err := ParseDirection("up")
	require.NoError(t, err)
	assert.Equal(t, Up, d)

	d, err = ParseDirection("DOWN")
	require.NoError(t, err)
	assert.Equal(t, Down, d)

	_, err = ParseDirection("sideways")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDirection))
}
