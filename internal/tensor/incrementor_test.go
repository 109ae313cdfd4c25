package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(inc *Incrementor, limit int) [][]int {
	var out [][]int
	for idx := inc.Index(); idx != nil && len(out) < limit; idx = inc.Next() {
		out = append(out, append([]int(nil), idx...))
	}
	return out
}

func TestIncrementorRowMajor(t *testing.T) {
	got := collect(NewIncrementor([]int{2, 3}), 100)
	assert.Equal(t, [][]int{
		{0, 0}, {0, 1}, {0, 2},
		{1, 0}, {1, 1}, {1, 2},
	}, got)
}

func TestIncrementorScalarAndEmpty(t *testing.T) {
	assert.Len(t, collect(NewIncrementor(nil), 10), 1)
	assert.Empty(t, collect(NewIncrementor([]int{2, 0, 3}), 10))
	assert.Empty(t, collect(NewAutoResetIncrementor([]int{0}), 10))
}

func TestIncrementorAutoReset(t *testing.T) {
	got := collect(NewAutoResetIncrementor([]int{2}), 5)
	assert.Equal(t, [][]int{{0}, {1}, {0}, {1}, {0}}, got)
}

func TestIncrementorReset(t *testing.T) {
	inc := NewIncrementor([]int{2, 2})
	assert.Len(t, collect(inc, 10), 4)
	assert.Nil(t, inc.Index())

	inc.Reset()
	assert.Equal(t, []int{0, 0}, inc.Index())
	assert.Len(t, collect(inc, 10), 4)
}

func TestIncrementorExcept(t *testing.T) {
	inc := NewIncrementorExcept([]int{2, 3, 2}, 1)
	assert.Equal(t, [][]int{{0, 0, 0}, {0, 0, 1}, {1, 0, 0}, {1, 0, 1}}, collect(inc, 10))

	inc.Reset()
	inc.SetAxis(2)
	assert.Equal(t, []int{0, 2, 0}, inc.Index())
	assert.Equal(t, []int{0, 2, 1}, inc.Next())

	// A zero-length reduced axis still yields every lane position.
	assert.Len(t, collect(NewIncrementorExcept([]int{3, 0}, 1), 10), 3)
}
