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
Package lipidyn analyzes molecular-dynamics trajectories of lipid membranes.

It provides two independent engines sharing the same trajectory abstraction:
an order-parameter engine, which evaluates per-residue bond-vector metrics
(the deuterium order parameter S, or the tilt angle against the membrane
normal) over every frame of a trajectory and reduces them to per-definition
mean, standard deviation and standard error of the mean; and a density-map
engine, which bins atom positions into a volume-weighted 2D grid, in parallel
over a pool of workers, and normalizes the merged grid by frame count and
average box size.

Coordinates are Nx3 gonum matrices in Angstroms. Periodic boxes are 3x3
triclinic cell matrices, given row-major as 9 floats. Reported densities and
grid tick marks are in nm, following the conventions of the membrane-analysis
tools this package interoperates with.

Trajectory readers, leaflet assignments and atom selections are supplied by
collaborators; the subpackages traj/mem and traj/mdt provide an in-memory and
an on-disk (compressed) implementation of the Traj interface.
*/
package lipidyn
