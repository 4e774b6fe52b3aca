/*
 * errors.go, part of lipidyn
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
	"strings"
)

//The analysis engines define three failure classes, all fatal to the run
//that produced them: a malformed definition line, an atom-pair selection
//that does not resolve to exactly 2 atoms per residue, and a bond vector
//too long to be physically plausible (almost always a periodic-boundary
//unwrapping defect upstream). None of them is retried.

// DefinitionError reports a malformed order-parameter definition line.
type DefinitionError struct {
	Line   int    //1-based line number in the input, 0 if not from a file
	Text   string //the offending line
	Reason string
	deco   []string
}

func (e *DefinitionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("lipidyn: definition line %d (%q): %s", e.Line, e.Text, e.Reason)
	}
	return fmt.Sprintf("lipidyn: bad definition (%q): %s", e.Text, e.Reason)
}

// Decorate adds information to the error and returns its current decoration.
func (e *DefinitionError) Decorate(deco string) []string {
	if deco != "" {
		e.deco = append(e.deco, deco)
	}
	return e.deco
}

// CardinalityError reports an atom-pair selection that resolved to a number
// of atoms other than 2 for some residue. The selection criteria are
// ambiguous or incomplete; the whole analysis is aborted.
type CardinalityError struct {
	Resname string
	Resid   int
	AtomA   string
	AtomB   string
	Found   []*Atom //every atom the selection resolved for this residue
	deco    []string
}

func (e *CardinalityError) Error() string {
	found := make([]string, len(e.Found))
	for i, at := range e.Found {
		found[i] = fmt.Sprintf("%s(id %d)", at.Name, at.ID)
	}
	return fmt.Sprintf("lipidyn: selection \"name %s %s\" in residue %s %d resolved %d atoms [%s], want exactly 2",
		e.AtomA, e.AtomB, e.Resname, e.Resid, len(e.Found), strings.Join(found, " "))
}

func (e *CardinalityError) Decorate(deco string) []string {
	if deco != "" {
		e.deco = append(e.deco, deco)
	}
	return e.deco
}

// BondLengthError reports a bond vector longer than the physically plausible
// maximum. A silently wrong geometry would corrupt the downstream statistics,
// so this is a hard stop, not a skip.
type BondLengthError struct {
	AtomA    string
	AtomB    string
	Resid    int
	Distance float64 //Angstroms
	deco     []string
}

func (e *BondLengthError) Error() string {
	return fmt.Sprintf("lipidyn: distance between atoms %s and %s in residue no. %d is suspiciously long: %.3f A. PBC removed?",
		e.AtomA, e.AtomB, e.Resid, e.Distance)
}

func (e *BondLengthError) Decorate(deco string) []string {
	if deco != "" {
		e.deco = append(e.deco, deco)
	}
	return e.deco
}
