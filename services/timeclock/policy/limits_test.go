// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package policy

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(limitMinutes float64) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	return NewLimiter(limitMinutes, clock, nil), clock
}

func TestCheck_NothingWorked(t *testing.T) {
	limiter, _ := newTestLimiter(480)

	status := limiter.Check("w-1")
	assert.Zero(t, status.WorkedMinutes)
	assert.Equal(t, 480.0, status.LimitMinutes)
	assert.False(t, status.Exceeded)
	assert.False(t, status.Acknowledged)
}

func TestRecordStop_Accumulates(t *testing.T) {
	limiter, _ := newTestLimiter(480)

	limiter.RecordStop("w-1", 120.5)
	limiter.RecordStop("w-1", 60.25)

	status := limiter.Check("w-1")
	assert.InDelta(t, 180.75, status.WorkedMinutes, 1e-9)
	assert.False(t, status.Exceeded)
}

func TestRecordStop_IgnoresNonPositive(t *testing.T) {
	limiter, _ := newTestLimiter(480)

	limiter.RecordStop("w-1", 0)
	limiter.RecordStop("w-1", -5)

	assert.Zero(t, limiter.Check("w-1").WorkedMinutes)
}

func TestCheck_ExceededOnlyPastLimit(t *testing.T) {
	limiter, _ := newTestLimiter(480)

	// Exactly at the limit is not exceeded.
	limiter.RecordStop("w-1", 480)
	assert.False(t, limiter.Check("w-1").Exceeded)

	limiter.RecordStop("w-1", 1)
	assert.True(t, limiter.Check("w-1").Exceeded)
}

func TestCheck_PerWorker(t *testing.T) {
	limiter, _ := newTestLimiter(480)

	limiter.RecordStop("w-1", 500)

	assert.True(t, limiter.Check("w-1").Exceeded)
	assert.False(t, limiter.Check("w-2").Exceeded)
	assert.Zero(t, limiter.Check("w-2").WorkedMinutes)
}

func TestAcknowledge(t *testing.T) {
	limiter, _ := newTestLimiter(480)

	limiter.RecordStop("w-1", 500)
	status := limiter.Acknowledge("w-1")
	assert.True(t, status.Exceeded)
	assert.True(t, status.Acknowledged)

	// Idempotent, and visible on later checks the same day.
	status = limiter.Acknowledge("w-1")
	assert.True(t, status.Acknowledged)
	assert.True(t, limiter.Check("w-1").Acknowledged)
}

func TestDayRollover(t *testing.T) {
	limiter, clock := newTestLimiter(480)

	limiter.RecordStop("w-1", 500)
	limiter.Acknowledge("w-1")
	assert.True(t, limiter.Check("w-1").Exceeded)

	clock.Advance(24 * time.Hour)

	status := limiter.Check("w-1")
	assert.Zero(t, status.WorkedMinutes)
	assert.False(t, status.Exceeded)
	assert.False(t, status.Acknowledged)
}

func TestDisabledLimit(t *testing.T) {
	limiter, _ := newTestLimiter(0)

	limiter.RecordStop("w-1", 10000)

	status := limiter.Check("w-1")
	assert.InDelta(t, 10000.0, status.WorkedMinutes, 1e-9)
	assert.False(t, status.Exceeded)
}
