package roi

// Extractor averages the green channel of RGBA frames over the forehead
// band. The native rectangle is recomputed only when the frame dimensions
// change. An Extractor belongs to a single session.
type Extractor struct {
	width, height int
	geometry      Geometry
	rect          Rect
}

func NewExtractor(displayW, displayH float64) *Extractor {
	return &Extractor{geometry: Geometry{DisplayW: displayW, DisplayH: displayH}}
}

// Rect returns the native ROI used for the last frame.
func (e *Extractor) Rect() Rect {
	return e.rect
}

func (e *Extractor) resize(w, h int) {
	if w == e.width && h == e.height {
		return
	}
	e.width, e.height = w, h
	e.geometry.NativeW, e.geometry.NativeH = w, h
	e.rect = e.geometry.Native()
}

// Sample returns the mean green value over the forehead band of a w x h
// RGBA frame with the given row stride. ok is false when the region is
// empty or the buffer is too short, in which case the frame is skipped.
func (e *Extractor) Sample(pix []byte, stride, w, h int) (float64, bool) {
	if w <= 0 || h <= 0 {
		return 0, false
	}
	e.resize(w, h)
	return MeanGreen(pix, stride, e.rect)
}

// MeanGreen averages byte 1 of each 4-byte pixel inside r. No other channel
// is read. A stride of zero means tightly packed rows ending at the
// rectangle's right edge.
func MeanGreen(pix []byte, stride int, r Rect) (float64, bool) {
	if r.Empty() {
		return 0, false
	}
	if stride <= 0 {
		stride = (r.X + r.W) * bytesPerPixel
	}
	last := (r.Y+r.H-1)*stride + (r.X+r.W-1)*bytesPerPixel + greenOffset
	if last >= len(pix) {
		return 0, false
	}

	var sum uint64
	for y := r.Y; y < r.Y+r.H; y++ {
		i := y*stride + r.X*bytesPerPixel + greenOffset
		for x := 0; x < r.W; x++ {
			sum += uint64(pix[i])
			i += bytesPerPixel
		}
	}

	return float64(sum) / float64(r.W*r.H), true
}
