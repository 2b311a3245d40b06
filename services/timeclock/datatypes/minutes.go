// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"math"
	"time"
)

// MinutesBetween returns the continuous minutes from from to to.
//
// Elapsed time is seconds/60, never truncated to whole minutes. A negative
// interval (clock skew between the anchor and the observation) clamps to
// zero rather than propagating into the accumulator.
func MinutesBetween(from, to time.Time) float64 {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return d.Minutes()
}

// RoundMinutes rounds a minute value to 2 decimal places.
//
// Applied only at finalization points (stop duration, snapshot elapsed);
// intermediate accumulator values stay unrounded.
func RoundMinutes(m float64) float64 {
	return math.Round(m*100) / 100
}
