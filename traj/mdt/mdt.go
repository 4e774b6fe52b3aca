/*
 * mdt.go, part of lipidyn
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

package mdt

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/lipidyn/lipidyn"
	"gonum.org/v1/gonum/mat"
)

const defaultPrec = 3

// Writer writes an mdt trajectory.
type Writer struct {
	h         io.WriteCloser
	buf       *bufio.Writer
	natoms    int
	filename  string
	prec      int
	pow       float64
	writeable bool
}

// NewWriter creates an mdt trajectory file for natoms atoms per frame,
// compressed according to the file extension. The optional metadata map is
// written to the header; a "prec" key overrides the coordinate precision
// (decimal digits kept, 3 by default).
func NewWriter(name string, natoms int, meta map[string]string) (*Writer, error) {
	h, err := lipidyn.CreateOutput(name)
	if err != nil {
		return nil, Error{message: "can't create trajectory: " + err.Error(), filename: name, critical: true}
	}
	W := &Writer{h: h, buf: bufio.NewWriter(h), natoms: natoms, filename: name, prec: defaultPrec}
	if p, ok := meta["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec < 0 {
			h.Close()
			return nil, Error{message: fmt.Sprintf("invalid precision %q", p), filename: name, critical: true}
		}
		W.prec = prec
	}
	W.pow = math.Pow(10, float64(W.prec))
	for k, v := range meta {
		fmt.Fprintf(W.buf, "%s=%s\n", k, v)
	}
	fmt.Fprintf(W.buf, "** %d\n", natoms)
	W.writeable = true
	return W, nil
}

// Len returns the number of atoms per frame.
func (W *Writer) Len() int {
	return W.natoms
}

// WNext writes the next frame, with the optional 9-float triclinic box on
// the frame terminator line.
func (W *Writer) WNext(coord *mat.Dense, box ...[]float64) error {
	if !W.writeable {
		return Error{message: "trajectory not open for writing", filename: W.filename, critical: true}
	}
	if coord == nil {
		return Error{message: "nil coordinates", filename: W.filename, critical: true}
	}
	r, c := coord.Dims()
	if r != W.natoms || c != 3 {
		return Error{message: fmt.Sprintf("%dx%d coordinates given, want %dx3", r, c, W.natoms), filename: W.filename, critical: true}
	}
	for i := 0; i < r; i++ {
		fmt.Fprintf(W.buf, "%d %d %d\n",
			int(math.RoundToEven(coord.At(i, 0)*W.pow)),
			int(math.RoundToEven(coord.At(i, 1)*W.pow)),
			int(math.RoundToEven(coord.At(i, 2)*W.pow)))
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		fmt.Fprintf(W.buf, "* %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f\n",
			b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		W.buf.WriteString("*\n")
	}
	return nil
}

// Close flushes and closes the trajectory. The Writer can not be used
// afterwards.
func (W *Writer) Close() error {
	if !W.writeable {
		return nil
	}
	W.writeable = false
	if err := W.buf.Flush(); err != nil {
		W.h.Close()
		return err
	}
	return W.h.Close()
}

// Reader reads an mdt trajectory.
type Reader struct {
	h        io.ReadCloser
	buf      *bufio.Reader
	natoms   int
	filename string
	prec     int
	pow      float64
	readable bool
}

// New opens an mdt trajectory for reading. It returns the reader, the
// metadata found in the header (nil if none), and error or nil.
func New(name string) (*Reader, map[string]string, error) {
	h, err := lipidyn.OpenInput(name)
	if err != nil {
		return nil, nil, Error{message: "can't open trajectory: " + err.Error(), filename: name, critical: true}
	}
	R := &Reader{h: h, buf: bufio.NewReader(h), natoms: -1, filename: name, prec: defaultPrec}
	var meta map[string]string
	for {
		str, err := R.buf.ReadString('\n')
		if err != nil {
			return nil, nil, Error{message: "can't read header: " + err.Error(), filename: name, critical: true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			fields := strings.Fields(str)
			if len(fields) < 2 {
				return nil, nil, Error{message: fmt.Sprintf("can't read atom number from %q", str), filename: name, critical: true}
			}
			R.natoms, err = strconv.Atoi(fields[1])
			if err != nil {
				return nil, nil, Error{message: fmt.Sprintf("can't read atom number from %q: %v", str, err), filename: name, critical: true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, nil, Error{message: fmt.Sprintf("malformed header line %q", str), filename: name, critical: true}
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		meta[kv[0]] = kv[1]
	}
	if p, ok := meta["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec < 0 {
			return nil, nil, Error{message: fmt.Sprintf("invalid precision %q", p), filename: name, critical: true}
		}
		R.prec = prec
	}
	R.pow = math.Pow(10, float64(R.prec))
	R.readable = true
	return R, meta, nil
}

// Readable returns true if it is possible to call Next on the reader.
func (R *Reader) Readable() bool {
	return R.readable
}

// Len returns the number of atoms per frame.
func (R *Reader) Len() int {
	return R.natoms
}

// Next reads the next frame into c, or discards it if c is nil (the frame
// is still checked for correctness). If box is given, the frame's cell
// matrix, when present, is copied into it. The end of the trajectory is
// reported as a lipidyn.LastFrameError.
func (R *Reader) Next(c *mat.Dense, box ...[]float64) error {
	if !R.readable {
		return Error{message: "trajectory not open for reading", filename: R.filename, critical: true}
	}
	for i := 0; i < R.natoms; i++ {
		line, err := R.buf.ReadString('\n')
		if err != nil {
			if err == io.EOF && i == 0 && line == "" {
				//nothing bad happened, the trajectory just ended
				R.Close()
				return newLastFrameError(R.filename)
			}
			return Error{message: "truncated frame: " + err.Error(), filename: R.filename, critical: true}
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return Error{message: fmt.Sprintf("ill-formed coordinate line %q", strings.TrimSpace(line)), filename: R.filename, critical: true}
		}
		for j, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return Error{message: fmt.Sprintf("can't parse coordinate %q: %v", f, err), filename: R.filename, critical: true}
			}
			if c != nil {
				c.Set(i, j, float64(v)/R.pow)
			}
		}
	}
	term, err := R.buf.ReadString('\n')
	if err != nil && err != io.EOF {
		return Error{message: "can't read the frame termination mark: " + err.Error(), filename: R.filename, critical: true}
	}
	if len(term) == 0 || term[0] != '*' {
		return Error{message: "wrong number of atoms in frame", filename: R.filename, critical: true}
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		fields := strings.Fields(strings.TrimSpace(term))
		if len(fields) >= 10 { //the "*" plus 9 values
			for j, f := range fields[1:10] {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return Error{message: fmt.Sprintf("can't parse box value %q: %v", f, err), filename: R.filename, critical: true}
				}
				box[0][j] = v
			}
		}
	}
	return nil
}

// NextConc reads len(frames) frames into the given matrices and returns one
// channel per frame, through which that frame is delivered in trajectory
// order.
func (R *Reader) NextConc(frames []*mat.Dense) ([]chan *mat.Dense, error) {
	if !R.readable {
		return nil, Error{message: "trajectory not open for reading", filename: R.filename, critical: true}
	}
	chans := make([]chan *mat.Dense, len(frames))
	for i, f := range frames {
		if err := R.Next(f); err != nil {
			if e, ok := err.(lipidyn.Error); ok {
				e.Decorate("NextConc")
			}
			return nil, err
		}
		chans[i] = make(chan *mat.Dense)
		go func(keep *mat.Dense, pipe chan *mat.Dense) {
			pipe <- keep
		}(f, chans[i])
	}
	return chans, nil
}

// Close closes the reader and marks it unreadable.
func (R *Reader) Close() {
	if !R.readable {
		return
	}
	R.readable = false
	R.h.Close()
}

// Error is the error type for mdt trajectories. It satisfies
// lipidyn.TrajError.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("mdt file %s error: %s", err.filename, err.message)
}

// Decorate adds information to the error and returns its decoration.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err Error) FileName() string { return err.filename }

func (err Error) Format() string { return "mdt" }

func (err Error) Critical() bool { return err.critical }

// lastFrameError implements lipidyn.LastFrameError.
type lastFrameError struct {
	deco     []string
	fileName string
}

func (e *lastFrameError) NormalLastFrameTermination() {}

func (e *lastFrameError) FileName() string { return e.fileName }

func (e *lastFrameError) Error() string { return "EOF" }

func (e *lastFrameError) Critical() bool { return false }

func (e *lastFrameError) Format() string { return "mdt" }

func (e *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		e.deco = append(e.deco, deco)
	}
	return e.deco
}

func newLastFrameError(filename string) *lastFrameError {
	return &lastFrameError{fileName: filename}
}
