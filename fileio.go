/*
 * fileio.go, part of lipidyn
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
	"compress/flate"
	"compress/gzip"
	"compress/lzw"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

//Transparent (de)compression for the text files this package reads and
//writes (definitions, results, grids). The codec is selected by the file
//extension: .gz (gzip), .zst/.zstd (zstd), .flate (deflate), .lzw; anything
//else is plain text.

const lzwLitwidth = 8

type inputFile struct {
	r     io.Reader
	close func() error
}

func (f *inputFile) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *inputFile) Close() error               { return f.close() }

type outputFile struct {
	w     io.Writer
	close func() error
}

func (f *outputFile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outputFile) Close() error                { return f.close() }

// OpenInput opens a file for reading, decompressing it according to its
// extension. The returned closer closes both the decompressor and the file.
func OpenInput(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		g, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &inputFile{r: g, close: func() error {
			g.Close()
			return f.Close()
		}}, nil
	case ".zst", ".zstd":
		z, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &inputFile{r: z, close: func() error {
			z.Close() //zstd.Decoder.Close returns nothing
			return f.Close()
		}}, nil
	case ".flate":
		fl := flate.NewReader(f)
		return &inputFile{r: fl, close: func() error {
			fl.Close()
			return f.Close()
		}}, nil
	case ".lzw":
		l := lzw.NewReader(f, lzw.MSB, lzwLitwidth)
		return &inputFile{r: l, close: func() error {
			l.Close()
			return f.Close()
		}}, nil
	default:
		return f, nil
	}
}

// CreateOutput creates a file for writing, compressing it according to its
// extension. Closing the returned writer flushes the compressor and closes
// the file.
func CreateOutput(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	var c io.WriteCloser
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		c = gzip.NewWriter(f)
	case ".zst", ".zstd":
		c, err = zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
	case ".flate":
		c, err = flate.NewWriter(f, flate.DefaultCompression)
		if err != nil {
			f.Close()
			return nil, err
		}
	case ".lzw":
		c = lzw.NewWriter(f, lzw.MSB, lzwLitwidth)
	default:
		return f, nil
	}
	return &outputFile{w: c, close: func() error {
		if err := c.Close(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}}, nil
}
