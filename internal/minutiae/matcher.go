package minutiae

import "math"

// maxCandidates bounds the matcher's work: only the first 50 probe points
// and, per probe, the first 50 template points are considered.
const maxCandidates = 50

// maxDist is the Euclidean pairing radius in pixels.
const maxDist = 20.0

// maxAngleDiff is the pairing tolerance in degrees, after folding the raw
// angular difference into [0, 180].
const maxAngleDiff = 30.0

// Match pairs probe against template and returns an integer score in
// [0, 100] plus whether that score clears threshold (also in [0, 100]).
//
// The algorithm is intentionally asymmetric: for each probe point (in
// order, capped at 50), the first template point (in order, capped at 50)
// that pairs with it is counted and the probe moves on to its next
// point. A template point may be reused across multiple probe points.
// Swapping probe and template can change the score; this is part of the
// contract, not a bug.
func Match(probe, template []MinutiaPoint, threshold int) (score int, matched bool) {
	if len(probe) == 0 || len(template) == 0 {
		return 0, false
	}

	probeLimit := probe
	if len(probeLimit) > maxCandidates {
		probeLimit = probeLimit[:maxCandidates]
	}
	templateLimit := template
	if len(templateLimit) > maxCandidates {
		templateLimit = templateLimit[:maxCandidates]
	}

	matchedCount := 0
	for _, p := range probeLimit {
		for _, g := range templateLimit {
			dx := p.X - g.X
			dy := p.Y - g.Y
			distance := math.Sqrt(dx*dx + dy*dy)

			angleDiff := math.Abs(p.Theta - g.Theta)
			if angleDiff > 180 {
				angleDiff = 360 - angleDiff
			}

			if distance < maxDist && angleDiff < maxAngleDiff {
				matchedCount++
				break
			}
		}
	}

	denom := len(probe)
	s := int(math.Round(100 * float64(matchedCount) / float64(denom)))
	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}

	return s, s >= threshold
}
