/*
 * density.go, part of lipidyn
 *
 * Copyright 2021 The lipidyn developers
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as published by
 * the Free Software Foundation, either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package lipidyn

import (
	"fmt"
	"io"
	"math"
	"runtime"

	"gonum.org/v1/gonum/mat"
)

const (
	//Grid bin width, in nm.
	gridBin = 0.02
	//Coordinates and boxes arrive in Angstroms; grid math is in nm.
	nmPerAngstrom = 0.1
)

// DensityMap bins atom positions into a 2D spatial histogram over the box
// x/y plane. Its dimensions are derived once, from the box of the first
// frame, and frozen: later frames may change box size (only the x/y extents
// are re-measured, for cell-volume weighting) but not bin resolution.
type DensityMap struct {
	n1, n2 int
}

// NewDensityMap sizes a density map from a triclinic box (9 floats,
// row-major, Angstroms): n1 bins over the box x extent, n2 over y, at
// gridBin nm per bin.
func NewDensityMap(box []float64) (*DensityMap, error) {
	if len(box) < 9 {
		return nil, fmt.Errorf("lipidyn.NewDensityMap: box needs 9 elements, got %d", len(box))
	}
	bx, by := box[0], box[4]
	if bx <= 0 || by <= 0 {
		return nil, fmt.Errorf("lipidyn.NewDensityMap: non-positive box extents %g x %g", bx, by)
	}
	n1 := int(math.Round(bx * nmPerAngstrom / gridBin))
	n2 := int(math.Round(by * nmPerAngstrom / gridBin))
	if n1 < 1 || n2 < 1 {
		return nil, fmt.Errorf("lipidyn.NewDensityMap: box %g x %g A too small for %g nm bins", bx, by, gridBin)
	}
	return &DensityMap{n1: n1, n2: n2}, nil
}

// Dims returns the grid dimensions (x bins, y bins).
func (D *DensityMap) Dims() (int, int) {
	return D.n1, D.n2
}

// Accum is one accumulation over a set of frames: a partial grid plus the
// frame and box-extent tallies needed for normalization. Partial
// accumulations over disjoint frame sets merge by plain summation, so the
// merge is order-independent.
type Accum struct {
	Grid   *mat.Dense
	Frames int
	boxX   float64 //summed x extents, Angstroms
	boxY   float64
}

// NewAccum returns an empty accumulation for the map's dimensions.
func (D *DensityMap) NewAccum() *Accum {
	return &Accum{Grid: mat.NewDense(D.n1, D.n2, nil)}
}

// Merge folds b into a. The sum is elementwise, commutative and
// associative; merging partials from disjoint frame ranges in any order
// gives the single-pass result.
func (a *Accum) Merge(b *Accum) {
	a.Grid.Add(a.Grid, b.Grid)
	a.Frames += b.Frames
	a.boxX += b.boxX
	a.boxY += b.boxY
}

// accumFrame bins the selected atoms of one frame. Every atom adds the
// inverse cell volume, n1*n2/det(cell in nm), to the cell under its
// fractional x/y position; fractions are wrapped into [0,1) on each axis by
// that axis' own value.
func (D *DensityMap) accumFrame(acc *Accum, coords *mat.Dense, indexes []int, box []float64) error {
	if len(box) < 9 {
		return fmt.Errorf("lipidyn: density frame without box information")
	}
	cell := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cell.Set(i, j, box[3*i+j]*nmPerAngstrom)
		}
	}
	vol := mat.Det(cell)
	if vol == 0 || math.IsNaN(vol) {
		return fmt.Errorf("lipidyn: degenerate box in density frame (det %g)", vol)
	}
	invcellvol := float64(D.n1*D.n2) / vol
	bx, by := box[0], box[4]
	for _, i := range indexes {
		m1 := (coords.At(i, 0) * nmPerAngstrom) / (bx * nmPerAngstrom)
		if m1 >= 1 {
			m1 -= 1 //pbc
		}
		if m1 < 0 {
			m1 += 1
		}
		m2 := (coords.At(i, 1) * nmPerAngstrom) / (by * nmPerAngstrom)
		if m2 >= 1 {
			m2 -= 1
		}
		if m2 < 0 {
			m2 += 1
		}
		c1 := int(m1 * float64(D.n1))
		c2 := int(m2 * float64(D.n2))
		if c1 == D.n1 { //m*n can round up to n right at the box edge
			c1 = D.n1 - 1
		}
		if c2 == D.n2 {
			c2 = D.n2 - 1
		}
		if c1 < 0 || c1 >= D.n1 || c2 < 0 || c2 >= D.n2 {
			return fmt.Errorf("lipidyn: atom %d outside the box after wrapping (fractions %g, %g)", i, m1, m2)
		}
		acc.Grid.Set(c1, c2, acc.Grid.At(c1, c2)+invcellvol)
	}
	acc.Frames++
	acc.boxX += bx
	acc.boxY += by
	return nil
}

// Accumulate reads the given trajectory to its end, binning the atoms at
// the given topology indexes frame by frame into acc.
func (D *DensityMap) Accumulate(traj Traj, indexes []int, acc *Accum) error {
	coords := mat.NewDense(traj.Len(), 3, nil)
	box := make([]float64, 9)
	for i := 0; ; i++ {
		for j := range box {
			box[j] = 0
		}
		err := traj.Next(coords, box)
		if err != nil {
			switch err := err.(type) {
			case LastFrameError:
				return nil
			case Error:
				err.Decorate(fmt.Sprintf("Accumulate: failed while reading the %d th frame", i))
				return err
			default:
				return err
			}
		}
		if err := D.accumFrame(acc, coords, indexes, box); err != nil {
			return err
		}
	}
}

// Grid is a normalized, labeled density grid: cell (i+1, j+1) holds the
// per-frame average density of x bin i, y bin j; the leading column holds
// the x-axis tick marks (bin lower edges, nm), the leading row the y-axis
// ones, and the corner is 0. All values are rounded to 5 decimals. A Grid
// is read-only once built; consumers render it as a heatmap externally.
type Grid struct {
	NX, NY int //data bins per axis, excluding the tick row/column
	Data   *mat.Dense
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

// Normalize turns an accumulation into its final grid: cells divided by the
// frame count, tick marks derived from the run-averaged box extents.
func (D *DensityMap) Normalize(acc *Accum) (*Grid, error) {
	if acc.Frames == 0 {
		return nil, fmt.Errorf("lipidyn.Normalize: no frames accumulated")
	}
	nf := float64(acc.Frames)
	avgX := acc.boxX * nmPerAngstrom / nf
	avgY := acc.boxY * nmPerAngstrom / nf
	out := mat.NewDense(D.n1+1, D.n2+1, nil)
	for i := 0; i < D.n1; i++ {
		out.Set(i+1, 0, round5(float64(i)*avgX/float64(D.n1)))
	}
	for j := 0; j < D.n2; j++ {
		out.Set(0, j+1, round5(float64(j)*avgY/float64(D.n2)))
	}
	for i := 0; i < D.n1; i++ {
		for j := 0; j < D.n2; j++ {
			out.Set(i+1, j+1, round5(acc.Grid.At(i, j)/nf))
		}
	}
	return &Grid{NX: D.n1, NY: D.n2, Data: out}, nil
}

// WriteTo writes the grid as a whitespace-separated numeric matrix, one row
// per line.
func (G *Grid) WriteTo(w io.Writer) (int64, error) {
	var written int64
	r, c := G.Data.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sep := " "
			if j == c-1 {
				sep = "\n"
			}
			n, err := fmt.Fprintf(w, "%.5f%s", G.Data.At(i, j), sep)
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// WriteGridFile writes the grid to a file, compressed if the extension asks
// for it.
func WriteGridFile(path string, G *Grid) error {
	f, err := CreateOutput(path)
	if err != nil {
		return err
	}
	if _, err := G.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type densityPartial struct {
	acc *Accum
	err error
}

// DensityMapTraj computes the normalized density grid of the atoms at the
// given indexes over the whole trajectory, fanning the frames out to ncpu
// workers (runtime.NumCPU() if ncpu <= 0). Each worker owns a private
// partial accumulation; the driver joins every worker, and trusts no merge
// before all of them have reported. Any worker failure fails the whole
// computation. If the trajectory implements FrameRanger the workers read
// their own contiguous frame ranges concurrently; otherwise the driver
// decodes frames in order and deals them out.
func DensityMapTraj(traj Traj, indexes []int, ncpu int) (*Grid, error) {
	if ncpu <= 0 {
		ncpu = runtime.NumCPU()
	}
	if traj == nil || !traj.Readable() {
		return nil, fmt.Errorf("lipidyn.DensityMapTraj: trajectory not readable")
	}
	if r, ok := traj.(FrameRanger); ok {
		return densityRanged(r, indexes, ncpu)
	}
	return densityStreamed(traj, indexes, ncpu)
}

// densityRanged partitions [0, Frames()) into ncpu contiguous chunks, one
// independent reader per worker.
func densityRanged(traj FrameRanger, indexes []int, ncpu int) (*Grid, error) {
	nframes := traj.Frames()
	if nframes == 0 {
		return nil, fmt.Errorf("lipidyn.DensityMapTraj: empty trajectory")
	}
	if ncpu > nframes {
		ncpu = nframes
	}
	box := make([]float64, 9)
	if err := traj.Range(0, 1).Next(nil, box); err != nil {
		return nil, err
	}
	dmap, err := NewDensityMap(box)
	if err != nil {
		return nil, err
	}
	results := make(chan densityPartial, ncpu)
	chunk := nframes / ncpu
	rem := nframes % ncpu
	lo := 0
	for w := 0; w < ncpu; w++ {
		hi := lo + chunk
		if w < rem {
			hi++
		}
		go func(sub Traj) {
			acc := dmap.NewAccum()
			err := dmap.Accumulate(sub, indexes, acc)
			results <- densityPartial{acc: acc, err: err}
		}(traj.Range(lo, hi))
		lo = hi
	}
	return joinAndNormalize(dmap, results, ncpu)
}

// densityStreamed reads the frames sequentially and deals them round robin
// to ncpu workers over per-worker channels, so each worker still owns a
// disjoint set of frames.
func densityStreamed(traj Traj, indexes []int, ncpu int) (*Grid, error) {
	type frame struct {
		coords *mat.Dense
		box    []float64
	}
	feeds := make([]chan frame, ncpu)
	results := make(chan densityPartial, ncpu)
	var dmap *DensityMap
	natoms := traj.Len()
	readErr := func() error {
		defer func() {
			for _, f := range feeds {
				if f != nil {
					close(f)
				}
			}
		}()
		for i := 0; ; i++ {
			coords := mat.NewDense(natoms, 3, nil)
			box := make([]float64, 9)
			err := traj.Next(coords, box)
			if err != nil {
				switch err := err.(type) {
				case LastFrameError:
					return nil
				case Error:
					err.Decorate(fmt.Sprintf("DensityMapTraj: failed while reading the %d th frame", i))
					return err
				default:
					return err
				}
			}
			if dmap == nil {
				var derr error
				dmap, derr = NewDensityMap(box)
				if derr != nil {
					return derr
				}
				for w := range feeds {
					feeds[w] = make(chan frame)
					go func(feed chan frame) {
						acc := dmap.NewAccum()
						var werr error
						for f := range feed {
							if werr != nil {
								continue //drain so the driver never blocks
							}
							werr = dmap.accumFrame(acc, f.coords, indexes, f.box)
						}
						results <- densityPartial{acc: acc, err: werr}
					}(feeds[w])
				}
			}
			feeds[i%ncpu] <- frame{coords: coords, box: box}
		}
	}()
	if dmap == nil {
		if readErr != nil {
			return nil, readErr
		}
		return nil, fmt.Errorf("lipidyn.DensityMapTraj: empty trajectory")
	}
	grid, err := joinAndNormalize(dmap, results, ncpu)
	if readErr != nil {
		return nil, readErr
	}
	return grid, err
}

// joinAndNormalize blocks until every worker has reported, then merges and
// normalizes. The merge never starts before the join completes.
func joinAndNormalize(dmap *DensityMap, results chan densityPartial, ncpu int) (*Grid, error) {
	partials := make([]*Accum, 0, ncpu)
	var failure error
	for w := 0; w < ncpu; w++ {
		p := <-results
		if p.err != nil && failure == nil {
			failure = p.err
		}
		partials = append(partials, p.acc)
	}
	if failure != nil {
		return nil, failure
	}
	total := partials[0]
	for _, p := range partials[1:] {
		total.Merge(p)
	}
	return dmap.Normalize(total)
}
