package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/lipidyn/lipidyn"
)

func twoFrames(t *testing.T) *Traj {
	t.Helper()
	traj := New(2)
	require.NoError(t, traj.AppendFrame(mat.NewDense(2, 3, []float64{
		0, 0, 0,
		1, 1, 1,
	}), []float64{10, 0, 0, 0, 10, 0, 0, 0, 10}))
	require.NoError(t, traj.AppendFrame(mat.NewDense(2, 3, []float64{
		2, 2, 2,
		3, 3, 3,
	}), nil))
	return traj
}

func TestAppendFrameDims(t *testing.T) {
	traj := New(2)
	err := traj.AppendFrame(mat.NewDense(3, 3, nil), nil)
	assert.Error(t, err)
	err = traj.AppendFrame(mat.NewDense(2, 2, nil), nil)
	assert.Error(t, err)
}

func TestNextCopies(t *testing.T) {
	traj := twoFrames(t)
	assert.Equal(t, 2, traj.Len())
	assert.Equal(t, 2, traj.Frames())
	assert.True(t, traj.Readable())

	c := mat.NewDense(2, 3, nil)
	box := make([]float64, 9)
	require.NoError(t, traj.Next(c, box))
	assert.Equal(t, 1.0, c.At(1, 0))
	assert.Equal(t, 10.0, box[0])

	//the copy must not alias the stored frame
	c.Set(1, 0, -1)
	traj.Reset()
	require.NoError(t, traj.Next(c, box))
	assert.Equal(t, 1.0, c.At(1, 0))
}

func TestNextSkipsNilReceiver(t *testing.T) {
	traj := twoFrames(t)
	require.NoError(t, traj.Next(nil))
	c := mat.NewDense(2, 3, nil)
	require.NoError(t, traj.Next(c))
	assert.Equal(t, 2.0, c.At(0, 0))
}

func TestNextEOF(t *testing.T) {
	traj := twoFrames(t)
	c := mat.NewDense(2, 3, nil)
	require.NoError(t, traj.Next(c))
	require.NoError(t, traj.Next(c))
	err := traj.Next(c)
	require.Error(t, err)
	_, ok := err.(lipidyn.LastFrameError)
	assert.True(t, ok, "end of trajectory must be a LastFrameError")
	assert.False(t, traj.Readable())
}

func TestRangeIndependentCursors(t *testing.T) {
	traj := twoFrames(t)
	first := traj.Range(0, 1)
	second := traj.Range(1, 2)

	c := mat.NewDense(2, 3, nil)
	require.NoError(t, second.Next(c))
	assert.Equal(t, 2.0, c.At(0, 0))
	_, ok := second.Next(c).(lipidyn.LastFrameError)
	assert.True(t, ok)

	//the other cursor, and the parent, are unaffected
	require.NoError(t, first.Next(c))
	assert.Equal(t, 0.0, c.At(0, 0))
	require.NoError(t, traj.Next(c))
	assert.Equal(t, 0.0, c.At(0, 0))
}

func TestRangeNested(t *testing.T) {
	traj := twoFrames(t)
	window := traj.Range(1, 2).(*Traj)
	assert.Equal(t, 1, window.Frames())

	//sub-ranges are relative to the window, not the full frame list
	sub := window.Range(0, 1)
	c := mat.NewDense(2, 3, nil)
	require.NoError(t, sub.Next(c))
	assert.Equal(t, 2.0, c.At(0, 0))
}

func TestRangeClamps(t *testing.T) {
	traj := twoFrames(t)
	r := traj.Range(-3, 99)
	n := 0
	c := mat.NewDense(2, 3, nil)
	for r.Readable() {
		require.NoError(t, r.Next(c))
		n++
	}
	assert.Equal(t, 2, n)
}

func TestNextConc(t *testing.T) {
	traj := twoFrames(t)
	frames := []*mat.Dense{mat.NewDense(2, 3, nil), mat.NewDense(2, 3, nil)}
	chans, err := traj.NextConc(frames)
	require.NoError(t, err)
	require.Len(t, chans, 2)
	got := make([]float64, 0, 2)
	for _, ch := range chans {
		f := <-ch
		require.NotNil(t, f)
		got = append(got, f.At(0, 0))
	}
	assert.Equal(t, []float64{0, 2}, got)
}
