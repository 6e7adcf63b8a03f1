package imgproc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

func TestSubtractThenAddRecovers(t *testing.T) {
	a := makeRandom(t, 10, 10, 21)
	b := makeRandom(t, 10, 10, 22)
	diff, err := Subtract(context.Background(), a, b)
	require.NoError(t, err)
	back, err := Add(context.Background(), diff, b)
	require.NoError(t, err)
	assert.True(t, a.Equal(back))
}

func TestBinaryOpsDoNotClamp(t *testing.T) {
	a := makeSolid(t, 1, 1, pixel.Pixel{R: 10, G: 200, B: 0, A: 9})
	b := makeSolid(t, 1, 1, pixel.Pixel{R: 20, G: 100, B: 5, A: 250})
	diff, err := Subtract(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, pixel.Pixel{R: -10, G: 100, B: -5, A: 9}, diff.At(0, 0))

	sum, err := Add(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, pixel.Pixel{R: 30, G: 300, B: 5, A: 9}, sum.At(0, 0))
	assert.Equal(t, []byte{30, 255, 5, 9}, sum.Bytes())
}

func TestBinaryOpsDimensionMismatch(t *testing.T) {
	a := makeSolid(t, 2, 2, gray(1))
	b := makeSolid(t, 2, 3, gray(1))
	_, err := Add(context.Background(), a, b)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = Subtract(context.Background(), a, b)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestBinaryOpApply(t *testing.T) {
	a := makeGray(t, [][]int32{{10, 30}})
	out, err := OpScale.Apply(context.Background(), a, nil)
	require.NoError(t, err)
	assert.Equal(t, gray(255), out.At(1, 0))
	assert.False(t, OpScale.NeedsOperand())
	assert.True(t, OpSubtract.NeedsOperand())

	_, err = BinaryOp(9).Apply(context.Background(), a, a)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestParseBinaryOp(t *testing.T) {
	for _, op := range []BinaryOp{OpAdd, OpSubtract, OpScale} {
		got, err := ParseBinaryOp(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	_, err := ParseBinaryOp("multiply")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
