package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatticeIndexing(t *testing.T) {
	l := newLattice(3)
	assert.Equal(t, 3, l.Steps())
	assert.Equal(t, 10, l.Len())

	for i := 0; i <= 3; i++ {
		for j := 0; j <= i; j++ {
			l.set(i, j, float64(10*i+j))
		}
	}
	assert.Equal(t, 21.0, l.At(2, 1))
	assert.Equal(t, []float64{30, 31, 32, 33}, l.Layer(3))

	layers := l.Layers()
	assert.Len(t, layers, 4)
	assert.Equal(t, []float64{0}, layers[0])
	assert.Equal(t, []float64{10, 11}, layers[1])
}

func TestLatticeLayerIsCopy(t *testing.T) {
	l := newLattice(1)
	l.set(1, 0, 5)

	layer := l.Layer(1)
	layer[0] = 99
	assert.Equal(t, 5.0, l.At(1, 0))
}

func TestLatticeOutOfRange(t *testing.T) {
	l := newLattice(2)
	assert.Panics(t, func() { l.At(1, 2) })
	assert.Panics(t, func() { l.At(3, 0) })
	assert.Panics(t, func() { l.Layer(-1) })
}
