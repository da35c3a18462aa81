package dsp_test

import (
	"math"
	"testing"

	"codeberg.org/mutker/camvitals/internal/dsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeDT(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
		want float64
	}{
		{"positive", 0.05, 0.05},
		{"zero", 0, dsp.DefaultDT},
		{"negative", -1, dsp.DefaultDT},
		{"nan", math.NaN(), dsp.DefaultDT},
		{"inf", math.Inf(1), dsp.DefaultDT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, dsp.SanitizeDT(tt.dt), 1e-12)
		})
	}
}

func TestBandpassRejectsDC(t *testing.T) {
	var bp dsp.Bandpass

	var out float64
	for i := 0; i < 30*60; i++ {
		out = bp.Apply(128, 1.0/30)
	}

	assert.InDelta(t, 0, out, 1e-3, "constant input should settle to zero")
}

func TestBandpassPassesPulseBand(t *testing.T) {
	const fs = 30.0
	amplitude := func(freq float64) float64 {
		var bp dsp.Bandpass
		peak := 0.0
		for i := 0; i < int(fs*30); i++ {
			ti := float64(i) / fs
			y := bp.Apply(math.Sin(2*math.Pi*freq*ti), 1/fs)
			if ti > 20 {
				peak = math.Max(peak, math.Abs(y))
			}
		}
		return peak
	}

	pulse := amplitude(1.2)
	slow := amplitude(0.05)
	fast := amplitude(12)

	assert.Greater(t, pulse, 0.5)
	assert.Greater(t, pulse, 5*slow)
	assert.Greater(t, pulse, 2*fast)
}

func TestBandpassInvalidDTStaysFinite(t *testing.T) {
	var bp dsp.Bandpass
	for _, dt := range []float64{0, -0.1, math.NaN(), math.Inf(1), 1.0 / 30} {
		y := bp.Apply(100, dt)
		require.False(t, math.IsNaN(y) || math.IsInf(y, 0), "dt=%v", dt)
	}

	var ref dsp.Bandpass
	ref.Apply(100, dsp.DefaultDT)
	var zero dsp.Bandpass
	zero.Apply(100, 0)
	assert.Equal(t, ref, zero, "non-positive dt behaves like the default interval")
}

func TestBandpassReset(t *testing.T) {
	var bp dsp.Bandpass
	bp.Apply(10, 0.03)
	bp.Apply(20, 0.03)

	bp.Reset()
	prev, hp, lp := bp.State()
	assert.Zero(t, prev)
	assert.Zero(t, hp)
	assert.Zero(t, lp)
}

func TestLowpass(t *testing.T) {
	lp := dsp.NewLowpass(0)
	assert.InDelta(t, dsp.DefaultRespiratoryHz, lp.Cutoff, 1e-12)

	var out float64
	for i := 0; i < 30*60; i++ {
		out = lp.Apply(5, 1.0/30)
	}
	assert.InDelta(t, 5, out, 1e-3, "lowpass converges on a constant")

	lp.Reset()
	assert.Zero(t, lp.State())
	assert.InDelta(t, dsp.DefaultRespiratoryHz, lp.Cutoff, 1e-12, "reset keeps the cutoff")
}

func TestBandpassPrimesOnFirstSample(t *testing.T) {
	var bp dsp.Bandpass

	assert.Zero(t, bp.Apply(128, 1.0/30), "baseline is not a step")

	peak := 0.0
	for i := 1; i < 30*5; i++ {
		ti := float64(i) / 30
		y := bp.Apply(128+5*math.Sin(2*math.Pi*1.2*ti), 1.0/30)
		peak = math.Max(peak, math.Abs(y))
	}
	assert.Less(t, peak, 5.0, "output stays within the pulse amplitude")

	bp.Reset()
	assert.Zero(t, bp.Apply(90, 1.0/30), "reset primes again")
}

func TestLowpassPrimesOnFirstSample(t *testing.T) {
	lp := dsp.NewLowpass(0.33)
	assert.InDelta(t, 128, lp.Apply(128, 1.0/30), 1e-12)
	assert.InDelta(t, 128, lp.Apply(128, 1.0/30), 1e-12)

	lp.Reset()
	assert.InDelta(t, 60, lp.Apply(60, 1.0/30), 1e-12)
}

func TestLowpassAttenuatesPulse(t *testing.T) {
	lp := dsp.NewLowpass(0.33)
	peak := 0.0
	for i := 0; i < 30*30; i++ {
		ti := float64(i) / 30
		y := lp.Apply(math.Sin(2*math.Pi*1.2*ti), 1.0/30)
		if ti > 10 {
			peak = math.Max(peak, math.Abs(y))
		}
	}
	assert.Less(t, peak, 0.35)
}
