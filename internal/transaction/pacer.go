// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package transaction

import (
	"context"
	"time"
)

// PacerConfig holds the three timing knobs spec.md §4.4 names, with
// the documented defaults. Callers should treat these as tunables
// (spec.md §9 open question) rather than hard-coded constants.
type PacerConfig struct {
	IdleBeforeTx  time.Duration
	InterFrame    time.Duration
	InterByte     time.Duration
}

// DefaultPacerConfig returns spec.md's documented defaults.
func DefaultPacerConfig() PacerConfig {
	return PacerConfig{
		IdleBeforeTx: 40 * time.Millisecond,
		InterFrame:   50 * time.Millisecond,
		InterByte:    0,
	}
}

// idleProbe is satisfied by port.Managed; kept narrow here so this
// package doesn't import port and create a cycle.
type idleProbe interface {
	Idle(grace time.Duration) bool
}

// Pacer decides when the next transmit on a port may begin.
type Pacer struct {
	cfg          PacerConfig
	lastTxEnd    time.Time
}

func NewPacer(cfg PacerConfig) *Pacer { return &Pacer{cfg: cfg} }

// WaitForSlot blocks until the bus has been idle for IdleBeforeTx and
// at least InterFrame has elapsed since the previous transmit
// completed. It polls at a fine grain since idleProbe has no native
// wake-up; pacing windows are tens of milliseconds so this is cheap.
func (p *Pacer) WaitForSlot(ctx context.Context, probe idleProbe) error {
	const pollInterval = 2 * time.Millisecond
	for {
		if time.Since(p.lastTxEnd) >= p.cfg.InterFrame && probe.Idle(p.cfg.IdleBeforeTx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// TransmitDuration is the pacer's model of how long a transmit of n
// payload bytes takes when InterByte throttling is enabled, used by
// spec.md §8's boundary-behavior test for the pacer.
func (p *Pacer) TransmitDuration(payloadBytes int, encodingOverhead time.Duration) time.Duration {
	return time.Duration(payloadBytes)*p.cfg.InterByte + encodingOverhead
}

// MarkTransmitComplete records when the most recent transmit finished,
// anchoring the next InterFrame wait.
func (p *Pacer) MarkTransmitComplete(at time.Time) {
	p.lastTxEnd = at
}

// RetryBackoff returns the exponential backoff delay for the given
// zero-based retry attempt, per spec.md §4.4's documented schedule
// (250/500/1000ms).
func RetryBackoff(attempt int) time.Duration {
	schedule := []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, 1000 * time.Millisecond}
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(schedule) {
		attempt = len(schedule) - 1
	}
	return schedule[attempt]
}
