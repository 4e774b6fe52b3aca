/*
 * doc.go, part of lipidyn
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

/*
Package mdt implements a compressed, plain-text trajectory format (membrane
dynamics trajectory). It is this library's own interchange format, meant for
intermediate storage of processed frames, not for reading the output of other
simulation packages.

An mdt stream starts with optional "key=value" metadata lines, then a
"** natoms" line. Each frame is natoms lines of 3 fixed-point integers
(coordinates in Angstroms times 10^prec, prec being 3 unless the metadata
says otherwise), terminated by a "*" line that optionally carries the 9
values of the frame's triclinic cell matrix.

Compression is chosen by the file extension: .mdt.gz (gzip), .mdt.zst (zstd),
.mdt.flate, .mdt.lzw, bare .mdt for uncompressed text.
*/
package mdt
