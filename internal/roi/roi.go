// Package roi reduces a camera frame to one scalar per frame: the mean
// green intensity over a fixed forehead band.
package roi

import "math"

const (
	bytesPerPixel = 4
	greenOffset   = 1

	widthFraction   = 0.46
	heightFraction  = 0.18
	centerYFraction = 0.22
)

// Rect is a region in native buffer pixels.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// RectF is a region in display coordinates.
type RectF struct {
	X, Y, W, H float64
}

// ForeheadRect returns the sampling band for a display of the given size:
// 46% of the width, 18% of the height, horizontally centred with its
// centre at 22% of the height. It approximates the forehead of a face
// framed in the middle of the picture; nothing is tracked.
func ForeheadRect(displayW, displayH float64) RectF {
	w := displayW * widthFraction
	h := displayH * heightFraction
	return RectF{
		X: (displayW - w) / 2,
		Y: displayH*centerYFraction - h/2,
		W: w,
		H: h,
	}
}

// ToNative maps a display rectangle into native pixels using the
// native-per-display scale factors, then clamps it to a bufW x bufH buffer.
// The origin is floored at zero and the size is at least 1x1 before
// clamping; a rectangle that lies entirely outside the buffer comes back
// empty.
func ToNative(r RectF, scaleX, scaleY float64, bufW, bufH int) Rect {
	out := Rect{
		X: max(0, int(math.Floor(r.X*scaleX))),
		Y: max(0, int(math.Floor(r.Y*scaleY))),
		W: max(1, int(math.Floor(r.W*scaleX))),
		H: max(1, int(math.Floor(r.H*scaleY))),
	}
	return Clamp(out, bufW, bufH)
}

// Clamp intersects r with the buffer bounds.
func Clamp(r Rect, bufW, bufH int) Rect {
	x0 := min(max(r.X, 0), bufW)
	y0 := min(max(r.Y, 0), bufH)
	x1 := min(max(r.X+r.W, 0), bufW)
	y1 := min(max(r.Y+r.H, 0), bufH)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Geometry holds the display size the ROI is defined against and the
// native frame size it is sampled from.
type Geometry struct {
	DisplayW, DisplayH float64
	NativeW, NativeH   int
}

// Native returns the forehead band in native pixels. A zero display size
// means the frame is shown at native resolution.
func (g Geometry) Native() Rect {
	dw, dh := g.DisplayW, g.DisplayH
	if dw <= 0 || dh <= 0 {
		dw, dh = float64(g.NativeW), float64(g.NativeH)
	}
	if dw <= 0 || dh <= 0 {
		return Rect{}
	}

	display := ForeheadRect(dw, dh)
	return ToNative(display, float64(g.NativeW)/dw, float64(g.NativeH)/dh, g.NativeW, g.NativeH)
}
