package minutiae

// border is the margin excluded on every edge of the image: the
// neighborhood average used to score each pixel needs all four direct
// neighbors present.
const border = 10

// contrastThreshold is the minimum absolute difference between a pixel
// and its 4-neighborhood average for the pixel to be emitted as a
// minutia candidate.
const contrastThreshold = 30

// maxPoints bounds the number of points Extract returns, independent of
// how many pixels clear the threshold.
const maxPoints = 200

// Extract runs a local-contrast heuristic over a 384x290 grayscale image
// and returns up to 200 MinutiaPoint candidates in row-major emission
// order. image must be exactly ImageSize bytes, row-major, origin
// top-left; Extract does not validate this and the caller (match.Facade)
// is responsible for the length check.
//
// This is a deliberately simple and deterministic placeholder feature
// detector, not a cryptographic or learned one. Its testable property is
// determinism, not biometric accuracy.
func Extract(image []byte) []MinutiaPoint {
	points := make([]MinutiaPoint, 0, maxPoints)

	for y := border; y < ImageHeight-border; y++ {
		for x := border; x < ImageWidth-border; x++ {
			idx := y*ImageWidth + x
			center := int(image[idx])

			up := int(image[(y-1)*ImageWidth+x])
			down := int(image[(y+1)*ImageWidth+x])
			left := int(image[y*ImageWidth+(x-1)])
			right := int(image[y*ImageWidth+(x+1)])

			avg := (up + down + left + right) / 4
			diff := center - avg
			if diff < 0 {
				diff = -diff
			}

			if diff > contrastThreshold {
				points = append(points, MinutiaPoint{
					X:     float64(x),
					Y:     float64(y),
					Theta: (float64(diff) / 255.0) * 360.0,
				})
				if len(points) >= maxPoints {
					return points
				}
			}
		}
	}

	return points
}
