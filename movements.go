/*
 * movements.go, part of lipidyn
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

	"gonum.org/v1/gonum/mat"
)

// Track is the in-plane path of one lipid along a trajectory: the x/y
// position of its center of mass, in nm, one entry per frame.
type Track struct {
	Resname string
	Resid   int
	XY      [][2]float64
}

// Tracks follows the lateral movement of each residue covered by the given
// atom indexes (typically one leaflet), walking the trajectory once. The
// center of mass is mass-weighted when the topology carries masses, the
// plain centroid otherwise.
func Tracks(traj Traj, top Atomer, indexes []int) ([]*Track, error) {
	if traj == nil || !traj.Readable() {
		return nil, fmt.Errorf("lipidyn.Tracks: trajectory not readable")
	}
	groups := SplitByResidue(top, indexes)
	tracks := make([]*Track, len(groups))
	weights := make([][]float64, len(groups))
	for g, idx := range groups {
		at := top.Atom(idx[0])
		tracks[g] = &Track{Resname: at.Molname, Resid: at.Molid}
		w := make([]float64, len(idx))
		var total float64
		for k, i := range idx {
			w[k] = top.Atom(i).Mass
			total += w[k]
		}
		if total <= 0 { //no masses in the topology, fall back to the centroid
			for k := range w {
				w[k] = 1
			}
			total = float64(len(w))
		}
		for k := range w {
			w[k] /= total
		}
		weights[g] = w
	}
	coords := mat.NewDense(traj.Len(), 3, nil)
	for f := 0; ; f++ {
		err := traj.Next(coords)
		if err != nil {
			switch err := err.(type) {
			case LastFrameError:
				return tracks, nil
			case Error:
				err.Decorate(fmt.Sprintf("Tracks: failed while reading the %d th frame", f))
				return nil, err
			default:
				return nil, err
			}
		}
		for g, idx := range groups {
			var x, y float64
			for k, i := range idx {
				x += coords.At(i, 0) * weights[g][k]
				y += coords.At(i, 1) * weights[g][k]
			}
			tracks[g].XY = append(tracks[g].XY, [2]float64{x * nmPerAngstrom, y * nmPerAngstrom})
		}
	}
}

// WriteTracks writes each track as a "> Residue name id" header followed by
// one tab-separated x/y row per frame, at 3 decimals.
func WriteTracks(w io.Writer, tracks []*Track) error {
	for _, t := range tracks {
		if _, err := fmt.Fprintf(w, "> Residue %s %d\n", t.Resname, t.Resid); err != nil {
			return err
		}
		for _, xy := range t.XY {
			if _, err := fmt.Fprintf(w, "%.3f\t%.3f\n", xy[0], xy[1]); err != nil {
				return err
			}
		}
	}
	return nil
}
