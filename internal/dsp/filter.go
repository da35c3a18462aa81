// Package dsp holds the signal-processing primitives of the rPPG pipeline:
// one-pole filters driven by the measured sample interval, a statistical
// peak detector, and the small statistics helpers they share.
package dsp

import "math"

const (
	// DefaultDT replaces a non-positive or non-finite sample interval.
	DefaultDT = 1.0 / 30.0

	CardiacHighpassHz = 0.7
	CardiacLowpassHz  = 3.0

	// DefaultRespiratoryHz is the respiratory lowpass corner. Values between
	// 0.33 and 0.35 Hz behave the same for breathing rates of 6-21/min.
	DefaultRespiratoryHz = 0.33
)

func rc(fc float64) float64 {
	return 1 / (2 * math.Pi * fc)
}

// SanitizeDT returns dt, or DefaultDT when dt cannot drive a filter step.
func SanitizeDT(dt float64) float64 {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return DefaultDT
	}
	return dt
}

// Bandpass is a one-pole highpass at 0.7 Hz followed by a one-pole lowpass
// at 3 Hz, passing roughly 42-180 bpm. The first sample after a reset
// primes the highpass input, so the signal baseline never enters as a step.
type Bandpass struct {
	prev   float64
	hp     float64
	lp     float64
	primed bool
}

// Apply advances the filter by one sample taken dt seconds after the
// previous one and returns the filtered value.
func (b *Bandpass) Apply(x, dt float64) float64 {
	dt = SanitizeDT(dt)
	if !b.primed {
		b.prev = x
		b.primed = true
	}

	rcHP := rc(CardiacHighpassHz)
	aHP := rcHP / (rcHP + dt)
	b.hp = aHP * (b.hp + x - b.prev)
	b.prev = x

	rcLP := rc(CardiacLowpassHz)
	aLP := dt / (rcLP + dt)
	b.lp += aLP * (b.hp - b.lp)

	return b.lp
}

func (b *Bandpass) Reset() {
	*b = Bandpass{}
}

// Lowpass is a single one-pole lowpass with a configurable corner. Like
// Bandpass it starts from its first input after a reset.
type Lowpass struct {
	Cutoff float64
	lp     float64
	primed bool
}

func NewLowpass(cutoff float64) *Lowpass {
	if cutoff <= 0 {
		cutoff = DefaultRespiratoryHz
	}
	return &Lowpass{Cutoff: cutoff}
}

func (l *Lowpass) Apply(x, dt float64) float64 {
	dt = SanitizeDT(dt)
	cutoff := l.Cutoff
	if cutoff <= 0 {
		cutoff = DefaultRespiratoryHz
	}

	if !l.primed {
		l.lp = x
		l.primed = true
		return l.lp
	}

	a := dt / (rc(cutoff) + dt)
	l.lp += a * (x - l.lp)

	return l.lp
}

// Reset zeroes the filter state and keeps the cutoff.
func (l *Lowpass) Reset() {
	l.lp = 0
	l.primed = false
}

// State exposes the recursive state for inspection in tests and debug logs.
func (b *Bandpass) State() (prev, hp, lp float64) {
	return b.prev, b.hp, b.lp
}

func (l *Lowpass) State() float64 {
	return l.lp
}
