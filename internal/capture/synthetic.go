package capture

import (
	"context"
	"math"
	"math/rand"
	"time"
)

const ditherLevels = 16

// SyntheticConfig shapes the simulated skin signal.
type SyntheticConfig struct {
	Width, Height   int
	FPS             float64
	HeartRateBPM    float64
	BreathRPM       float64
	PulseAmplitude  float64
	BreathAmplitude float64
	Noise           float64
	Baseline        float64
	// Duration bounds the stream in virtual time; zero means unbounded.
	Duration time.Duration
	// Realtime paces frames against the wall clock instead of producing
	// them as fast as they are consumed.
	Realtime bool
	Seed     int64
}

func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Width:           64,
		Height:          48,
		FPS:             30,
		HeartRateBPM:    72,
		BreathRPM:       15,
		PulseAmplitude:  5,
		BreathAmplitude: 2,
		Noise:           0.3,
		Baseline:        128,
		Seed:            1,
	}
}

// Synthetic renders uniform frames whose green level follows a pulse wave
// plus a slower breathing wave and some noise. Frame times advance on a
// virtual clock at exactly FPS.
type Synthetic struct {
	cfg   SyntheticConfig
	rng   *rand.Rand
	frame Frame
	start time.Time
	seq   uint64
	open  bool
}

func NewSynthetic(cfg SyntheticConfig) *Synthetic {
	def := DefaultSyntheticConfig()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.FPS <= 0 {
		cfg.FPS = def.FPS
	}
	if cfg.Baseline == 0 {
		cfg.Baseline = def.Baseline
	}
	return &Synthetic{cfg: cfg}
}

func (s *Synthetic) Open(_ context.Context, _ string) error {
	s.rng = rand.New(rand.NewSource(s.cfg.Seed))
	s.start = time.Now()
	s.seq = 0

	stride := s.cfg.Width * bytesPerPixel
	if cap(s.frame.Pix) < stride*s.cfg.Height {
		s.frame.Pix = make([]byte, stride*s.cfg.Height)
	}
	s.frame.Pix = s.frame.Pix[:stride*s.cfg.Height]
	s.frame.Width, s.frame.Height, s.frame.Stride = s.cfg.Width, s.cfg.Height, stride
	s.open = true

	return nil
}

// Level is the green intensity at t seconds, before noise.
func (s *Synthetic) Level(t float64) float64 {
	pulse := s.cfg.PulseAmplitude * math.Sin(2*math.Pi*(s.cfg.HeartRateBPM/60)*t)
	breath := s.cfg.BreathAmplitude * math.Sin(2*math.Pi*(s.cfg.BreathRPM/60)*t)
	return s.cfg.Baseline + pulse + breath
}

func (s *Synthetic) Next(ctx context.Context) (*Frame, error) {
	if !s.open {
		return nil, errNotOpen()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offset := time.Duration(float64(s.seq) / s.cfg.FPS * float64(time.Second))
	if s.cfg.Duration > 0 && offset >= s.cfg.Duration {
		return nil, ErrExhausted
	}

	ts := s.start.Add(offset)
	if s.cfg.Realtime {
		if wait := time.Until(ts); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	level := s.Level(offset.Seconds())
	if s.cfg.Noise > 0 {
		level += s.rng.NormFloat64() * s.cfg.Noise
	}
	s.fill(level)

	s.frame.Timestamp = ts
	s.frame.Seq = s.seq
	s.seq++

	return &s.frame, nil
}

// fill paints every pixel with an ordered dither of level so the frame mean
// keeps sub-integer precision.
func (s *Synthetic) fill(level float64) {
	pix := s.frame.Pix
	for i := 0; i*bytesPerPixel < len(pix); i++ {
		d := (float64(i%ditherLevels) + 0.5) / ditherLevels
		g := math.Floor(level + d)
		g = math.Max(0, math.Min(255, g))
		p := pix[i*bytesPerPixel : i*bytesPerPixel+bytesPerPixel]
		p[0] = 180
		p[1] = byte(g)
		p[2] = 150
		p[3] = 255
	}
}

func (s *Synthetic) Close() error {
	s.open = false
	return nil
}
