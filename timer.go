/*
 * timer.go, part of lipidyn
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
	"time"
)

// Timer measures the wall-clock time of an analysis run. It is an explicit
// value passed by the caller, not ambient state.
type Timer struct {
	start time.Time
}

// StartTimer returns a running timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the time since the timer was started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// String reports the elapsed time as "Hhour:Mmin:Ssec".
func (t *Timer) String() string {
	e := t.Elapsed()
	h := int(e.Hours())
	m := int(e.Minutes()) % 60
	s := int(e.Seconds()) % 60
	return fmt.Sprintf("%dhour:%dmin:%dsec", h, m, s)
}
