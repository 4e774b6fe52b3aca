/*
 * interfaces.go, part of lipidyn
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

import "gonum.org/v1/gonum/mat"

// Traj is the interface for any trajectory object. Frames are visited once,
// in order; rewinding is not part of the contract.
type Traj interface {

	//Is the trajectory ready to be read?
	Readable() bool

	//Next reads the next frame into c (or discards it if c is nil). If a box
	//slice of at least 9 elements is given, it is filled with the triclinic
	//cell matrix of the frame, row-major, in Angstroms, when that information
	//is present. The end of the trajectory is signaled with an error
	//implementing LastFrameError, which is not an actual failure.
	Next(c *mat.Dense, box ...[]float64) error

	//Returns the number of atoms per frame.
	Len() int
}

// ConcTraj is a trajectory that can be read concurrently.
type ConcTraj interface {
	Readable() bool

	//NextConc reads len(frames) frames from the trajectory, into the given
	//matrices, and returns one channel per frame through which that frame
	//will be transmitted, in trajectory order.
	NextConc(frames []*mat.Dense) ([]chan *mat.Dense, error)

	Len() int
}

// FrameRanger is implemented by trajectories whose frames can be revisited
// and counted, such as in-memory ones. Range returns an independent reader
// over the frame interval [start, end); readers over disjoint ranges may be
// used concurrently.
type FrameRanger interface {
	Traj
	Frames() int
	Range(start, end int) Traj
}

// Atomer is the basic interface for a topology.
type Atomer interface {

	//Atom returns the Atom corresponding to the index i
	//of the Atom slice in the Topology. Should panic if
	//out of range.
	Atom(i int) *Atom

	Len() int
}

// Error is the interface implemented by the errors of this library. The
// Decorate method adds information to an error as it is passed up the call
// stack, without wrapping it into another type. Passing an empty string only
// retrieves the current decoration.
type Error interface {
	Error() string
	Decorate(string) []string
}

// TrajError is the interface for errors in trajectories.
type TrajError interface {
	Error
	Critical() bool
	FileName() string
	Format() string
}

// LastFrameError signals the normal end of a trajectory. Its only extra
// method does nothing; it exists so the harmless end-of-trajectory condition
// can be filtered in a type switch.
type LastFrameError interface {
	TrajError
	NormalLastFrameTermination()
}
