package fibonacci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	var s Sequence
	assert.Empty(t, s.Values())

	require.NoError(t, s.Add())
	assert.Equal(t, []uint64{0}, s.Values())
	require.NoError(t, s.Add())
	require.NoError(t, s.Add())
	assert.Equal(t, []uint64{0, 1, 1}, s.Values())

	s.Subtract()
	assert.Equal(t, []uint64{0, 1}, s.Values())

	require.NoError(t, s.AddN(11))
	assert.Equal(t, []uint64{0, 1, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144}, s.Values())

	s.SubtractN(5)
	assert.Equal(t, []uint64{0, 1, 1, 2, 3, 5, 8, 13}, s.Values())
}

func TestSubtractEdges(t *testing.T) {
	var s Sequence
	s.Subtract()
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.AddN(3))
	s.SubtractN(4)
	assert.Equal(t, 3, s.Len(), "asking for more than the length changes nothing")
	s.SubtractN(3)
	assert.Equal(t, 0, s.Len())
}

func TestValuesIsACopy(t *testing.T) {
	var s Sequence
	require.NoError(t, s.AddN(2))
	v := s.Values()
	v[1] = 42
	assert.Equal(t, []uint64{0, 1}, s.Values())
}

func TestFirst(t *testing.T) {
	v, err := First(0)
	require.NoError(t, err)
	assert.Empty(t, v)

	v, err = First(MaxLen)
	require.NoError(t, err)
	require.Len(t, v, MaxLen)
	assert.Equal(t, uint64(2880067194370816120), v[90])

	_, err = First(MaxLen + 1)
	assert.ErrorIs(t, err, ErrTooLong)
}
