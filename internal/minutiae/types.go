// Package minutiae extracts minutia-like feature points from a
// fixed-geometry grayscale fingerprint image and scores a probe point set
// against a template point set under translation / rotation tolerance.
package minutiae

// MinutiaPoint is the extractor's and matcher's working representation of
// a single feature: floating point (x, y) location and an angle in
// degrees. Produced freshly per match request and dropped when the
// request completes; never retained across requests.
type MinutiaPoint struct {
	X, Y  float64
	Theta float64
}

// ImageWidth and ImageHeight are the fixed geometry every probe/template
// image must match.
const (
	ImageWidth  = 384
	ImageHeight = 290
	ImageSize   = ImageWidth * ImageHeight
)
