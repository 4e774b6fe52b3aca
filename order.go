/*
 * order.go, part of lipidyn
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
	"log"
	"math"

	"gonum.org/v1/gonum/mat"
)

//Max distance, in Angstroms, between bonded atoms for a reasonable order
//parameter (PBC and sanity check).
const BondLenMax = 1.5

const bondLenMaxSq = BondLenMax * BondLenMax

//Box height, in Angstroms, assumed when a frame carries no box information.
const defaultZDim = 45.0

// Pair is one residue's atom pair, as topology indexes. A is always the
// first atom of the definition, whatever the storage order.
type Pair struct {
	Resid int
	A, B  int
}

// Resolve finds, for every residue with the definition's residue name, the
// pair of atoms named AtomA and AtomB. Residues appear in topology order;
// within each pair, A comes first regardless of where the atoms sit in the
// file. A residue resolving to anything but one A and one B atom is a
// CardinalityError.
func (d *OPDef) Resolve(top Atomer) error {
	type group struct {
		resid int
		chain string
		a, b  []int
		all   []*Atom
	}
	type resKey struct {
		id    int
		chain string
	}
	var groups []*group
	byKey := make(map[resKey]*group)
	for i := 0; i < top.Len(); i++ {
		at := top.Atom(i)
		if at.Molname != d.Resname {
			continue
		}
		isA := at.Name == d.AtomA
		isB := at.Name == d.AtomB
		if !isA && !isB {
			continue
		}
		k := resKey{at.Molid, at.Chain}
		g, ok := byKey[k]
		if !ok {
			g = &group{resid: at.Molid, chain: at.Chain}
			byKey[k] = g
			groups = append(groups, g)
		}
		g.all = append(g.all, at)
		if isA {
			g.a = append(g.a, i)
		} else {
			g.b = append(g.b, i)
		}
	}
	pairs := make([]Pair, 0, len(groups))
	for _, g := range groups {
		if len(g.a) != 1 || len(g.b) != 1 {
			return &CardinalityError{Resname: d.Resname, Resid: g.resid,
				AtomA: d.AtomA, AtomB: d.AtomB, Found: g.all}
		}
		pairs = append(pairs, Pair{Resid: g.resid, A: g.a[0], B: g.b[0]})
	}
	d.pairs = pairs
	d.series = nil
	return nil
}

// ResolveAll resolves the selections of every definition in the list against
// the topology, stopping at the first failure.
func ResolveAll(defs *DefList, top Atomer) error {
	for i := 0; i < defs.Len(); i++ {
		if err := defs.At(i).Resolve(top); err != nil {
			if e, ok := err.(Error); ok {
				e.Decorate(fmt.Sprintf("ResolveAll: definition %s", defs.At(i).Name))
			}
			return err
		}
	}
	return nil
}

// orderParam computes S = (3cos2(theta)-1)/2 for the bond vector of pair p,
// theta being the angle against the membrane normal (z). A bond longer than
// BondLenMax aborts with a BondLengthError.
func (d *OPDef) orderParam(va, vb []float64, p Pair) (float64, error) {
	vx := vb[0] - va[0]
	vy := vb[1] - va[1]
	vz := vb[2] - va[2]
	d2 := vx*vx + vy*vy + vz*vz
	if d2 > bondLenMaxSq {
		return 0, &BondLengthError{AtomA: d.AtomA, AtomB: d.AtomB,
			Resid: p.Resid, Distance: math.Sqrt(d2)}
	}
	cos2 := vz * vz / d2
	return 0.5 * (3.0*cos2 - 1.0), nil
}

// tiltAngle computes the angle, in degrees, between the bond vector and the
// z axis. Bottom-leaflet values are inverted so both leaflets use the
// top-leaflet nomenclature: the cosine sign is flipped by the sign of the A
// atom's height over the box midplane. A cosine past +/-1 from floating
// point overshoot is clamped and logged, never an error.
func tiltAngle(va, vb []float64, zdim float64) float64 {
	if zdim <= 0 {
		zdim = defaultZDim
	}
	vx := vb[0] - va[0]
	vy := vb[1] - va[1]
	vz := vb[2] - va[2]
	dist := math.Sqrt(vx*vx + vy*vy + vz*vz)
	cos := vz / dist
	cos *= math.Copysign(1.0, va[2]-zdim*0.5)
	return clampedDegrees(cos)
}

// clampedDegrees converts a cosine to the angle in degrees, truncating it
// to [-1, 1] first. Cosines slightly past 1 come from floating-point
// overshoot and are reported, not raised.
func clampedDegrees(cos float64) float64 {
	if cos > 1.0 || cos < -1.0 {
		log.Printf("lipidyn: cosine too large (%g), truncating to +/-1.0", cos)
		cos = math.Copysign(1.0, cos)
	}
	return math.Acos(cos) * 180.0 / math.Pi
}

// CalcOPs walks the trajectory once, in order, and for every frame, every
// definition and every residue pair computes the definition's metric,
// building each definition's [frame][residue] series. Selections must have
// been resolved first. The tilt metric takes the membrane midplane from the
// current frame's z box length. Returns the number of frames read.
func CalcOPs(traj Traj, defs *DefList) (int, error) {
	if traj == nil || !traj.Readable() {
		return 0, fmt.Errorf("lipidyn.CalcOPs: trajectory not readable")
	}
	for i := 0; i < defs.Len(); i++ {
		if defs.At(i).pairs == nil {
			return 0, fmt.Errorf("lipidyn.CalcOPs: definition %s has no resolved selection", defs.At(i).Name)
		}
	}
	coords := mat.NewDense(traj.Len(), 3, nil)
	box := make([]float64, 9)
	frames := 0
reading:
	for i := 0; ; i++ {
		for j := range box {
			box[j] = 0
		}
		err := traj.Next(coords, box)
		if err != nil {
			switch err := err.(type) {
			case LastFrameError:
				break reading
			case Error:
				err.Decorate(fmt.Sprintf("CalcOPs: failed while reading the %d th frame", i))
				return frames, err
			default:
				return frames, err
			}
		}
		zdim := box[8]
		for j := 0; j < defs.Len(); j++ {
			d := defs.At(j)
			row := make([]float64, len(d.pairs))
			for k, p := range d.pairs {
				va := coords.RawRowView(p.A)
				vb := coords.RawRowView(p.B)
				if d.Kind == Tilt {
					row[k] = tiltAngle(va, vb, zdim)
					continue
				}
				s, err := d.orderParam(va, vb, p)
				if err != nil {
					if e, ok := err.(Error); ok {
						e.Decorate(fmt.Sprintf("CalcOPs: definition %s, frame %d", d.Name, i))
					}
					return frames, err
				}
				row[k] = s
			}
			d.series = append(d.series, row)
		}
		frames++
	}
	return frames, nil
}

// Summarize reduces a completed series into its results: Avg is the grand
// mean over all frame x residue values, Means the per-residue mean across
// frames, Std the population standard deviation of Means, and Stem
// Std/sqrt(residue count). The results are stored on the definition and
// returned.
func (d *OPDef) Summarize() (*Results, error) {
	if len(d.series) == 0 {
		return nil, fmt.Errorf("lipidyn: Summarize: definition %s has an empty series", d.Name)
	}
	means := colMeans(d.series)
	r := &Results{
		Avg:   grandMean(d.series),
		Std:   popStd(means),
		Stem:  stdErrMean(means),
		Means: means,
	}
	d.Res = r
	return r, nil
}

// SummarizeAll reduces every definition in the list.
func SummarizeAll(defs *DefList) error {
	for i := 0; i < defs.Len(); i++ {
		if _, err := defs.At(i).Summarize(); err != nil {
			return err
		}
	}
	return nil
}
