package lipidyn_test

import (
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/lipidyn/lipidyn"
	"github.com/lipidyn/lipidyn/traj/mem"
)

func box(l float64) []float64 {
	return []float64{l, 0, 0, 0, l, 0, 0, 0, l}
}

func TestOrderParameterEndToEnd(t *testing.T) {
	defs, err := lipidyn.ParseDefs(strings.NewReader("beta1 POPC C12 H12A\n"))
	require.NoError(t, err)

	top, err := lipidyn.MakeTopology([]*lipidyn.Atom{
		{Name: "C12", ID: 1, Molname: "POPC", Molid: 1},
		{Name: "H12A", ID: 2, Molname: "POPC", Molid: 1},
	})
	require.NoError(t, err)
	require.NoError(t, lipidyn.ResolveAll(defs, top))

	traj := mem.New(2)
	require.NoError(t, traj.AppendFrame(mat.NewDense(2, 3, []float64{
		0, 0, 0,
		0, 0, 1.0,
	}), box(45)))

	frames, err := lipidyn.CalcOPs(traj, defs)
	require.NoError(t, err)
	assert.Equal(t, 1, frames)

	require.NoError(t, lipidyn.SummarizeAll(defs))
	res := defs.Get("beta1").Res
	require.NotNil(t, res)
	assert.InDelta(t, 1.0, res.Avg, 1e-12)
	assert.Zero(t, res.Std)
	assert.Zero(t, res.Stem)

	//write, read back, compare
	path := filepath.Join(t.TempDir(), "Order_Parameter_POPC.dat")
	require.NoError(t, lipidyn.WriteResultsFile(path, defs))
	back, err := lipidyn.ReadDefs(path)
	require.NoError(t, err)
	require.Equal(t, 1, back.Len())
	want := &lipidyn.Results{Avg: 1, Std: 0, Stem: 0}
	if diff := cmp.Diff(want, back.At(0).Res, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("results round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCalcOPsBondLengthAborts(t *testing.T) {
	defs, err := lipidyn.ParseDefs(strings.NewReader("beta1 POPC C12 H12A\n"))
	require.NoError(t, err)
	top, err := lipidyn.MakeTopology([]*lipidyn.Atom{
		{Name: "C12", ID: 1, Molname: "POPC", Molid: 1},
		{Name: "H12A", ID: 2, Molname: "POPC", Molid: 1},
	})
	require.NoError(t, err)
	require.NoError(t, lipidyn.ResolveAll(defs, top))

	traj := mem.New(2)
	//periodic image: the pair ends up 9 A apart
	require.NoError(t, traj.AppendFrame(mat.NewDense(2, 3, []float64{
		0, 0, 0.5,
		0, 0, 9.5,
	}), box(45)))
	_, err = lipidyn.CalcOPs(traj, defs)
	var be *lipidyn.BondLengthError
	require.ErrorAs(t, err, &be)
	assert.InDelta(t, 9.0, be.Distance, 1e-12)
}

func TestCalcOPsTiltUsesFrameBox(t *testing.T) {
	defs, err := lipidyn.ParseDefs(strings.NewReader("vec_sn1 POPC C2 C218\n"))
	require.NoError(t, err)
	top, err := lipidyn.MakeTopology([]*lipidyn.Atom{
		{Name: "C2", ID: 1, Molname: "POPC", Molid: 1},
		{Name: "C218", ID: 2, Molname: "POPC", Molid: 1},
	})
	require.NoError(t, err)
	require.NoError(t, lipidyn.ResolveAll(defs, top))

	//atom A sits at z=30: upper leaflet in a 50 A box, lower in a 100 A one
	traj := mem.New(2)
	coords := []float64{
		0, 0, 30,
		0, 0, 31,
	}
	require.NoError(t, traj.AppendFrame(mat.NewDense(2, 3, coords), box(50)))
	require.NoError(t, traj.AppendFrame(mat.NewDense(2, 3, coords), box(100)))

	_, err = lipidyn.CalcOPs(traj, defs)
	require.NoError(t, err)
	series := defs.Get("vec_sn1").Series()
	require.Len(t, series, 2)
	assert.InDelta(t, 0.0, series[0][0], 1e-12)
	assert.InDelta(t, 180.0, series[1][0], 1e-12)
}

// randomTraj builds a deterministic pseudo-random trajectory of nframes
// frames with natoms atoms in an l-Angstrom cubic box.
func randomTraj(natoms, nframes int, l float64) *mem.Traj {
	rng := rand.New(rand.NewSource(42))
	traj := mem.New(natoms)
	for f := 0; f < nframes; f++ {
		data := make([]float64, natoms*3)
		for i := range data {
			//a little spillover past the box borders to exercise wrapping
			data[i] = rng.Float64()*l*1.1 - 0.05*l
		}
		if err := traj.AppendFrame(mat.NewDense(natoms, 3, data), box(l)); err != nil {
			panic(err)
		}
	}
	return traj
}

// streamOnly hides the FrameRanger methods of a trajectory, forcing the
// density driver onto its streaming path.
type streamOnly struct {
	lipidyn.Traj
}

func TestDensityParallelMatchesSerial(t *testing.T) {
	const natoms, nframes = 24, 11
	traj := randomTraj(natoms, nframes, 10)
	indexes := make([]int, natoms)
	for i := range indexes {
		indexes[i] = i
	}

	//single accumulation over the whole frame set
	b := make([]float64, 9)
	require.NoError(t, traj.Range(0, 1).Next(nil, b))
	dmap, err := lipidyn.NewDensityMap(b)
	require.NoError(t, err)
	acc := dmap.NewAccum()
	require.NoError(t, dmap.Accumulate(traj.Range(0, nframes), indexes, acc))
	want, err := dmap.Normalize(acc)
	require.NoError(t, err)

	//any partition into disjoint ranges must sum to the same grid
	for _, ncpu := range []int{1, 2, 3, 5} {
		got, err := lipidyn.DensityMapTraj(traj.Range(0, nframes), indexes, ncpu)
		require.NoError(t, err)
		assert.True(t, mat.EqualApprox(want.Data, got.Data, 1e-9), "ncpu=%d", ncpu)
	}

	//the streaming driver agrees with the range-partitioned one
	got, err := lipidyn.DensityMapTraj(streamOnly{traj.Range(0, nframes)}, indexes, 3)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want.Data, got.Data, 1e-9))
}

func TestDensityWorkerFailureSurfaces(t *testing.T) {
	const natoms = 4
	traj := randomTraj(natoms, 6, 10)
	//a frame with no box poisons whichever worker receives it
	require.NoError(t, traj.AppendFrame(mat.NewDense(natoms, 3, make([]float64, natoms*3)), nil))
	indexes := []int{0, 1, 2, 3}
	_, err := lipidyn.DensityMapTraj(traj.Range(0, 7), indexes, 3)
	require.Error(t, err)

	_, err = lipidyn.DensityMapTraj(streamOnly{traj.Range(0, 7)}, indexes, 3)
	require.Error(t, err)
}

func TestTracks(t *testing.T) {
	top, err := lipidyn.MakeTopology([]*lipidyn.Atom{
		{Name: "C1", ID: 1, Molname: "POPC", Molid: 1, Mass: 12},
		{Name: "C2", ID: 2, Molname: "POPC", Molid: 1, Mass: 12},
	})
	require.NoError(t, err)

	traj := mem.New(2)
	require.NoError(t, traj.AppendFrame(mat.NewDense(2, 3, []float64{
		0, 0, 0,
		2, 4, 0,
	}), box(45)))
	require.NoError(t, traj.AppendFrame(mat.NewDense(2, 3, []float64{
		10, 10, 0,
		10, 10, 0,
	}), box(45)))

	tracks, err := lipidyn.Tracks(traj, top, []int{0, 1})
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	want := []*lipidyn.Track{{
		Resname: "POPC",
		Resid:   1,
		XY:      [][2]float64{{0.1, 0.2}, {1.0, 1.0}},
	}}
	if diff := cmp.Diff(want, tracks, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("tracks mismatch (-want +got):\n%s", diff)
	}

	var sb strings.Builder
	require.NoError(t, lipidyn.WriteTracks(&sb, tracks))
	assert.Equal(t, "> Residue POPC 1\n0.100\t0.200\n1.000\t1.000\n", sb.String())
}
