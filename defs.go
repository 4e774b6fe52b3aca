/*
 * defs.go, part of lipidyn
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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MetricKind selects the per-frame metric computed for a definition.
type MetricKind int

const (
	//SZ is the deuterium order parameter S = (3cos2(theta)-1)/2 against the
	//membrane normal.
	SZ MetricKind = iota
	//Tilt is the angle, in degrees, between the bond vector and the membrane
	//normal, reported with the upper-leaflet sign convention for both
	//leaflets.
	Tilt
)

//Definition names containing this substring select the tilt-angle metric.
//The convention comes from the definition files this format is shared with;
//it is resolved once, at parse time.
const tiltNameTag = "vec"

// Results holds the cross-frame, cross-residue reduction of one definition's
// series.
type Results struct {
	Avg   float64   //grand mean over all residue x frame values
	Std   float64   //population std of the per-residue means
	Stem  float64   //Std / sqrt(number of residues)
	Means []float64 //per-residue mean across frames; nil when read from a results file
}

// OPDef is one order-parameter definition: a label, the residue name, and
// the two atom names whose bond vector is measured. A definition is
// immutable once constructed, except for its resolved selection and computed
// results.
type OPDef struct {
	Name    string
	Resname string
	AtomA   string
	AtomB   string
	Kind    MetricKind

	//Res is nil until Summarize runs or the definition is read back from a
	//results file.
	Res *Results

	pairs  []Pair
	series [][]float64 //[frame][residue]
}

// NewOPDef validates and builds a definition. The four names must be
// non-blank. The optional extra values are a previously computed (avg, std)
// or (avg, std, stem); any other count is an error.
func NewOPDef(name, resname, atomA, atomB string, extra ...float64) (*OPDef, error) {
	for _, s := range []string{name, resname, atomA, atomB} {
		if strings.TrimSpace(s) == "" {
			return nil, &DefinitionError{Text: fmt.Sprintf("%s %s %s %s", name, resname, atomA, atomB),
				Reason: "empty field in definition"}
		}
	}
	d := &OPDef{Name: name, Resname: resname, AtomA: atomA, AtomB: atomB}
	if strings.Contains(name, tiltNameTag) {
		d.Kind = Tilt
	}
	switch len(extra) {
	case 0:
	case 2:
		d.Res = &Results{Avg: extra[0], Std: extra[1]}
	case 3:
		d.Res = &Results{Avg: extra[0], Std: extra[1], Stem: extra[2]}
	default:
		return nil, &DefinitionError{Text: name,
			Reason: fmt.Sprintf("%d optional values given, want 0, 2 or 3. Wrong file format?", len(extra))}
	}
	return d, nil
}

// Pairs returns the atom pairs resolved for the definition, one per residue.
// It is nil before Resolve.
func (d *OPDef) Pairs() []Pair {
	return d.pairs
}

// Series returns the computed [frame][residue] metric values. The returned
// slices are owned by the definition and must not be modified.
func (d *OPDef) Series() [][]float64 {
	return d.series
}

// DefList is an ordered collection of definitions. Input order is preserved,
// which keeps downstream reports stable and comparable against external
// reference tables.
type DefList struct {
	defs   []*OPDef
	byName map[string]int
}

// NewDefList returns an empty definition list.
func NewDefList() *DefList {
	return &DefList{byName: make(map[string]int)}
}

// Add appends a definition, or replaces it in place if the name was already
// present.
func (l *DefList) Add(d *OPDef) {
	if i, ok := l.byName[d.Name]; ok {
		l.defs[i] = d
		return
	}
	l.byName[d.Name] = len(l.defs)
	l.defs = append(l.defs, d)
}

// Len returns the number of definitions in the list.
func (l *DefList) Len() int {
	return len(l.defs)
}

// At returns the i-th definition, in input order.
func (l *DefList) At(i int) *OPDef {
	return l.defs[i]
}

// Get returns the definition with the given name, or nil.
func (l *DefList) Get(name string) *OPDef {
	if i, ok := l.byName[name]; ok {
		return l.defs[i]
	}
	return nil
}

// ParseDefs parses order-parameter definitions from flat text: one
// definition per line, fields "name resname atomA atomB [avg [std [stem]]]"
// separated by whitespace. Lines starting with '#' and blank lines are
// skipped. Results files written by WriteResults parse back with their
// avg/std/stem loaded.
func ParseDefs(r io.Reader) (*DefList, error) {
	l := NewDefList()
	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, &DefinitionError{Line: lineno, Text: line,
				Reason: fmt.Sprintf("%d fields, want at least 4", len(fields))}
		}
		extra := make([]float64, 0, 3)
		for _, f := range fields[4:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, &DefinitionError{Line: lineno, Text: line,
					Reason: fmt.Sprintf("can't parse %q as a number: %v", f, err)}
			}
			extra = append(extra, v)
		}
		d, err := NewOPDef(fields[0], fields[1], fields[2], fields[3], extra...)
		if err != nil {
			if de, ok := err.(*DefinitionError); ok {
				de.Line = lineno
				de.Text = line
			}
			return nil, err
		}
		l.Add(d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("lipidyn.ParseDefs: %w", err)
	}
	return l, nil
}

// ReadDefs parses a definitions (or results) file. Files compressed with
// gzip, zstd, flate or lzw are decompressed transparently, selected by the
// file extension.
func ReadDefs(path string) (*DefList, error) {
	f, err := OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseDefs(f)
}

// WriteResults writes one fixed-width record per definition:
// name(20) resname(7) atomA(5) atomB(5) avg std stem. Definitions without
// results are an error.
func WriteResults(w io.Writer, l *DefList) error {
	for i := 0; i < l.Len(); i++ {
		d := l.At(i)
		if d.Res == nil {
			return fmt.Errorf("lipidyn.WriteResults: definition %s has no results", d.Name)
		}
		_, err := fmt.Fprintf(w, "%-20s %-7s %-5s %-5s % 2.5f % 2.5f % 2.5f \n",
			d.Name, d.Resname, d.AtomA, d.AtomB, d.Res.Avg, d.Res.Std, d.Res.Stem)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteResultsFile writes the results to a file, compressed if the extension
// asks for it.
func WriteResultsFile(path string, l *DefList) error {
	f, err := CreateOutput(path)
	if err != nil {
		return err
	}
	if err := WriteResults(f, l); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
