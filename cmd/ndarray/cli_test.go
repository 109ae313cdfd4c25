package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndarray/tensor"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCLI()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseDims(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"", []int{}},
		{"()", []int{}},
		{"5", []int{5}},
		{"2,3", []int{2, 3}},
		{"(2, 0, 4)", []int{2, 0, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDims(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseDims("2,x")
	assert.Error(t, err)
	_, err = parseDims("-1")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ndarray "+version+"\n", out)
}

func TestDTypes(t *testing.T) {
	out, err := run(t, "dtypes")
	require.NoError(t, err)
	for _, dt := range tensor.DataTypes() {
		assert.Contains(t, out, dt.String())
	}
	assert.Contains(t, out, "unsigned")
}

func TestBroadcast(t *testing.T) {
	out, err := run(t, "broadcast", "3,1", "4")
	require.NoError(t, err)
	assert.Equal(t, "(3, 4)\n", out)

	out, err = run(t, "broadcast", "2,1,3", "5,1", "1")
	require.NoError(t, err)
	assert.Equal(t, "(2, 5, 3)\n", out)

	_, err = run(t, "broadcast", "3,2", "4")
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"sum axis", []string{"--op", "sum", "--shape", "2,3", "--axis", "1"}, "array([3, 12], dtype=float64)"},
		{"sum all", []string{"--op", "sum", "--shape", "2,3"}, "array(15, dtype=float64)"},
		{"keepdims", []string{"--op", "max", "--shape", "2,3", "--axis", "0", "--keepdims"}, "array([[3, 4, 5]], dtype=float64)"},
		{"argmax", []string{"--op", "argmax", "--shape", "2,3", "--dtype", "int32", "--axis", "1"}, "array([2, 2], dtype=int64)"},
		{"int sum", []string{"--op", "sum", "--shape", "4", "--dtype", "int16"}, "array(6, dtype=int64)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"reduce"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestReduceArrow(t *testing.T) {
	out, err := run(t, "reduce", "--op", "sum", "--shape", "2,3", "--axis", "0", "--arrow")
	require.NoError(t, err)
	assert.Equal(t, "[3 5 7]", strings.TrimSpace(out))
}

func TestReduceErrors(t *testing.T) {
	_, err := run(t, "reduce", "--op", "median")
	assert.Error(t, err)

	_, err = run(t, "reduce", "--dtype", "complex64")
	assert.ErrorIs(t, err, tensor.ErrType)

	_, err = run(t, "reduce", "--shape", "2,3", "--axis", "2")
	assert.ErrorIs(t, err, tensor.ErrAxisOutOfRange)
}
