/*
 * lipidyn.go, part of lipidyn
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

import "fmt"

// Atom holds the topology information for one atom. It is not expected to
// change along a trajectory.
type Atom struct {
	Name    string
	ID      int
	Molname string //residue name, e.g. "POPC"
	Molid   int    //residue number
	Chain   string
	Mass    float64
}

// Copy returns a copy of the atom.
func (A *Atom) Copy() *Atom {
	at := *A
	return &at
}

// Topology is a collection of atoms. It satisfies Atomer.
type Topology struct {
	atoms []*Atom
}

// MakeTopology builds a Topology from the given atoms. It returns an error
// if the slice is nil.
func MakeTopology(ats []*Atom) (*Topology, error) {
	if ats == nil {
		return nil, fmt.Errorf("lipidyn.MakeTopology: nil atom slice")
	}
	return &Topology{atoms: ats}, nil
}

// Atom returns the i-th atom of the topology. Panics if out of range.
func (T *Topology) Atom(i int) *Atom {
	if i < 0 || i >= len(T.atoms) {
		panic("lipidyn.Topology: requested atom out of bounds")
	}
	return T.atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.atoms)
}

// Masses returns a slice with the mass of every atom in the topology, and an
// error if any mass is missing.
func (T *Topology) Masses() ([]float64, error) {
	m := make([]float64, len(T.atoms))
	for i, at := range T.atoms {
		if at.Mass <= 0 {
			return nil, fmt.Errorf("lipidyn.Topology.Masses: no mass for atom %d (%s %s%d)", i, at.Name, at.Molname, at.Molid)
		}
		m[i] = at.Mass
	}
	return m, nil
}

// AtomIndexes returns the indexes of every atom with the given residue and
// atom name, in topology order.
func AtomIndexes(top Atomer, molname, name string) []int {
	var ret []int
	for i := 0; i < top.Len(); i++ {
		at := top.Atom(i)
		if at.Molname == molname && at.Name == name {
			ret = append(ret, i)
		}
	}
	return ret
}

// MolnameIndexes returns the indexes of every atom belonging to a residue
// with one of the given names.
func MolnameIndexes(top Atomer, molnames ...string) []int {
	var ret []int
	for i := 0; i < top.Len(); i++ {
		at := top.Atom(i)
		for _, n := range molnames {
			if at.Molname == n {
				ret = append(ret, i)
				break
			}
		}
	}
	return ret
}

// SplitByResidue partitions the given atom indexes by residue (Molid and
// Chain), preserving the order in which each residue first appears.
func SplitByResidue(top Atomer, indexes []int) [][]int {
	type key struct {
		id    int
		chain string
	}
	var order []key
	groups := make(map[key][]int)
	for _, i := range indexes {
		at := top.Atom(i)
		k := key{at.Molid, at.Chain}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}
	ret := make([][]int, len(order))
	for j, k := range order {
		ret[j] = groups[k]
	}
	return ret
}
