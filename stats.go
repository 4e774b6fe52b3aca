/*
 * stats.go, part of lipidyn
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
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Reduction helpers shared by both engines. Each residue is treated as one
//independent observation; its temporal mean collapses the correlated frames
//within the residue, so the spread across residues is the meaningful error
//estimate.

// popStd is the population (not sample-corrected) standard deviation.
// gonum's stat.StdDev applies Bessel's correction, which is not wanted here.
func popStd(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	m := stat.Mean(x, nil)
	return math.Sqrt(stat.MomentAbout(2, x, m, nil))
}

// stdErrMean is the standard error of the mean over the given per-residue
// means: popStd(x)/sqrt(len(x)).
func stdErrMean(x []float64) float64 {
	return popStd(x) / math.Sqrt(float64(len(x)))
}

// colMeans returns the per-column mean of a [frame][residue] series. Every
// row must have the same length as the first.
func colMeans(series [][]float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	ret := make([]float64, len(series[0]))
	for _, row := range series {
		floats.Add(ret, row)
	}
	floats.Scale(1/float64(len(series)), ret)
	return ret
}

// grandMean returns the mean over every value of a [frame][residue] series.
func grandMean(series [][]float64) float64 {
	var sum float64
	var n int
	for _, row := range series {
		sum += floats.Sum(row)
		n += len(row)
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
