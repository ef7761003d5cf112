// Package match dispatches a (probe image, stored blob, threshold)
// request to minutiae matching when the blob is an FP3 template, or to
// raw image scoring when both sides are raw images of the same fixed
// geometry.
package match

import (
	"bytes"
	"math"

	"github.com/bobbydeveaux/fpmatch-service/internal/fp3"
	"github.com/bobbydeveaux/fpmatch-service/internal/imagescore"
	"github.com/bobbydeveaux/fpmatch-service/internal/minutiae"
)

// fp3Magic is the header every FP3 blob begins with.
var fp3Magic = []byte("FP3")

// parseFailureSimilarity is the sentinel similarity returned when a blob
// looks like an FP3 container (by magic) but fails to decode. It is
// deliberately nonzero so downstream telemetry can distinguish "parsed
// but did not match" (similarity 0.0, computed) from "could not parse"
// (similarity 0.1, sentinel) -- at the cost of similarity not being a
// pure function of the inputs on this one path. matched is always false
// here, so the threshold decision itself is unaffected.
const parseFailureSimilarity = 0.1

// Match compares probeImage against storedBlob at threshold (in [0,1])
// and returns (similarity in [0,1], matched). It never returns an error:
// every failure mode collapses to a (similarity, false) result.
func Match(probeImage, storedBlob []byte, threshold float64) (similarity float64, matched bool) {
	if len(probeImage) != minutiae.ImageSize {
		return 0.0, false
	}

	if bytes.HasPrefix(storedBlob, fp3Magic) {
		return matchFP3(probeImage, storedBlob, threshold)
	}

	if len(storedBlob) == minutiae.ImageSize {
		s := imagescore.Score(probeImage, storedBlob)
		return s, s >= threshold
	}

	return 0.0, false
}

// matchFP3 decodes storedBlob as an FP3 template and matches the probe's
// extracted minutiae against every print in it, reporting the highest
// score among the prints that clear threshold. When no print clears
// threshold the similarity is 0.0, whatever the prints scored.
func matchFP3(probeImage, storedBlob []byte, threshold float64) (float64, bool) {
	tmpl, err := fp3.Decode(storedBlob)
	if err != nil {
		return parseFailureSimilarity, false
	}

	probe := minutiae.Extract(probeImage)
	if len(probe) == 0 {
		return 0.0, false
	}

	thresholdInt := int(math.Round(threshold * 100))

	bestScore := 0
	bestMatched := false
	for _, set := range tmpl.Prints {
		templatePoints := setToPoints(set)
		score, m := minutiae.Match(probe, templatePoints, thresholdInt)
		if m && score > bestScore {
			bestScore = score
			bestMatched = true
		}
	}

	return float64(bestScore) / 100.0, bestMatched
}

// setToPoints converts a decoded fp3.MinutiaSet into the minutiae
// package's floating-point working representation.
func setToPoints(set fp3.MinutiaSet) []minutiae.MinutiaPoint {
	points := make([]minutiae.MinutiaPoint, set.N())
	for i := range points {
		points[i] = minutiae.MinutiaPoint{
			X:     float64(set.X[i]),
			Y:     float64(set.Y[i]),
			Theta: float64(set.Theta[i]),
		}
	}
	return points
}

