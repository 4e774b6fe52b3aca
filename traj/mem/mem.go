/*
 * mem.go, part of lipidyn
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

//Package mem implements an in-memory trajectory. It is the natural Traj for
//callers that already hold their frames, and the one the analysis engines
//are tested against. Since frames can be revisited, it also implements
//lipidyn.FrameRanger, allowing the density engine to read disjoint frame
//ranges concurrently.
package mem

import (
	"fmt"

	"github.com/lipidyn/lipidyn"
	"gonum.org/v1/gonum/mat"
)

// Traj is an in-memory trajectory: a sequence of Nx3 coordinate matrices
// (Angstroms) with optional per-frame triclinic boxes. Frames appended to it
// are owned by the trajectory and must not be modified afterwards.
type Traj struct {
	natoms int
	frames []*mat.Dense
	boxes  [][]float64
	start  int //first frame of this cursor's window
	pos    int
	end    int //one past the last frame this cursor may read
}

// New returns an empty trajectory with natoms atoms per frame.
func New(natoms int) *Traj {
	return &Traj{natoms: natoms, end: -1}
}

// AppendFrame adds a frame, with box either nil or the 9-float triclinic
// cell matrix in Angstroms.
func (T *Traj) AppendFrame(coords *mat.Dense, box []float64) error {
	r, c := coords.Dims()
	if r != T.natoms || c != 3 {
		return Error{message: fmt.Sprintf("frame is %dx%d, want %dx3", r, c, T.natoms)}
	}
	if box != nil && len(box) < 9 {
		return Error{message: fmt.Sprintf("box has %d elements, want 9", len(box))}
	}
	T.frames = append(T.frames, coords)
	T.boxes = append(T.boxes, box)
	return nil
}

// Readable returns true while the cursor still has frames ahead.
func (T *Traj) Readable() bool {
	return T.pos < T.limit()
}

func (T *Traj) limit() int {
	if T.end >= 0 {
		return T.end
	}
	return len(T.frames)
}

// Len returns the number of atoms per frame.
func (T *Traj) Len() int {
	return T.natoms
}

// Frames returns the number of frames this cursor covers.
func (T *Traj) Frames() int {
	return T.limit() - T.start
}

// Next copies the next frame into c (or skips it if c is nil) and, when box
// is given and the frame has one, its cell matrix into box. The end of the
// trajectory is reported as a lipidyn.LastFrameError.
func (T *Traj) Next(c *mat.Dense, box ...[]float64) error {
	if T.pos >= T.limit() {
		return lastFrameError{}
	}
	f := T.frames[T.pos]
	b := T.boxes[T.pos]
	T.pos++
	if c != nil {
		c.Copy(f)
	}
	if len(box) > 0 && len(box[0]) >= 9 && b != nil {
		copy(box[0], b[:9])
	}
	return nil
}

// Reset rewinds the cursor to the first frame of its window.
func (T *Traj) Reset() {
	T.pos = T.start
}

// Range returns an independent cursor over frames [start, end) of the
// receiver's window. The frames themselves are shared, so cursors over
// disjoint ranges can be read concurrently.
func (T *Traj) Range(start, end int) lipidyn.Traj {
	lo := T.start + start
	hi := T.start + end
	if start < 0 {
		lo = T.start
	}
	if hi > T.limit() || end < 0 {
		hi = T.limit()
	}
	return &Traj{natoms: T.natoms, frames: T.frames, boxes: T.boxes, start: lo, pos: lo, end: hi}
}

// NextConc reads len(frames) frames and returns one channel per frame,
// through which that frame is delivered in trajectory order.
func (T *Traj) NextConc(frames []*mat.Dense) ([]chan *mat.Dense, error) {
	if !T.Readable() {
		return nil, Error{message: "trajectory not readable"}
	}
	chans := make([]chan *mat.Dense, len(frames))
	for i, f := range frames {
		if err := T.Next(f); err != nil {
			return nil, err
		}
		chans[i] = make(chan *mat.Dense)
		go func(keep *mat.Dense, pipe chan *mat.Dense) {
			pipe <- keep
		}(f, chans[i])
	}
	return chans, nil
}

// Error is the error type of in-memory trajectories. It satisfies
// lipidyn.TrajError.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string {
	return fmt.Sprintf("mem trajectory error: %s", err.message)
}

// Decorate adds information to the error and returns its decoration.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err Error) FileName() string { return "" }

func (err Error) Format() string { return "mem" }

func (err Error) Critical() bool { return true }

// lastFrameError implements lipidyn.LastFrameError.
type lastFrameError struct {
	deco []string
}

func (e lastFrameError) NormalLastFrameTermination() {}

func (e lastFrameError) Error() string { return "EOF" }

func (e lastFrameError) FileName() string { return "" }

func (e lastFrameError) Format() string { return "mem" }

func (e lastFrameError) Critical() bool { return false }

func (e lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		e.deco = append(e.deco, deco)
	}
	return e.deco
}
