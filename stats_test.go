package lipidyn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopStd(t *testing.T) {
	//population std of {1,2,3} is sqrt(2/3); the sample-corrected one
	//would be 1
	assert.InDelta(t, math.Sqrt(2.0/3.0), popStd([]float64{1, 2, 3}), 1e-12)
	assert.Zero(t, popStd([]float64{4, 4, 4, 4}))
	assert.True(t, math.IsNaN(popStd(nil)))
}

func TestStdErrMean(t *testing.T) {
	want := math.Sqrt(2.0/3.0) / math.Sqrt(3)
	assert.InDelta(t, want, stdErrMean([]float64{1, 2, 3}), 1e-12)
}

func TestColMeans(t *testing.T) {
	series := [][]float64{
		{1, 10},
		{3, 30},
	}
	m := colMeans(series)
	assert.InDelta(t, 2, m[0], 1e-12)
	assert.InDelta(t, 20, m[1], 1e-12)
	assert.Nil(t, colMeans(nil))
}

func TestGrandMean(t *testing.T) {
	assert.InDelta(t, 2.5, grandMean([][]float64{{1, 2}, {3, 4}}), 1e-12)
	assert.True(t, math.IsNaN(grandMean(nil)))
}
