// Package imagescore implements the alternate scoring path used when both
// sides of a fingerprint comparison are raw images of the canonical
// geometry rather than a decoded FP3 template: histogram intersection,
// histogram correlation, an MSE-derived similarity, and a simplified
// single-window SSIM, combined into one weighted similarity in [0, 1].
package imagescore

import "math"

// SSIM constants from the simplified single-window formulation.
const (
	ssimC1 = 0.01
	ssimC2 = 0.03
)

// Weights for the combined similarity.
const (
	weightSSIM      = 0.5
	weightHistInter = 0.3
	weightHistCorr  = 0.1
	weightMSE       = 0.1
)

// Score compares two equal-length grayscale byte slices and returns a
// combined similarity in [0, 1]. A length mismatch (including either side
// being empty) yields 0.0.
func Score(a, b []byte) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	hist1 := normalizedHistogram(a)
	hist2 := normalizedHistogram(b)

	hi := histogramIntersection(hist1, hist2)
	hc := histogramCorrelation(hist1, hist2)
	ms := mseSimilarity(a, b)
	s := ssim(a, b)

	return weightSSIM*s + weightHistInter*hi + weightHistCorr*hc + weightMSE*ms
}

// normalizedHistogram returns a 256-bin histogram of img normalized so its
// entries sum to 1.0.
func normalizedHistogram(img []byte) [256]float64 {
	var counts [256]int
	for _, p := range img {
		counts[p]++
	}
	var hist [256]float64
	total := float64(len(img))
	for i, c := range counts {
		hist[i] = float64(c) / total
	}
	return hist
}

// histogramIntersection is Σ min(h1,h2) / Σ max(h1,h2), or 0 when the
// denominator is zero.
func histogramIntersection(h1, h2 [256]float64) float64 {
	var inter, total float64
	for i := 0; i < 256; i++ {
		if h1[i] < h2[i] {
			inter += h1[i]
		} else {
			inter += h2[i]
		}
		if h1[i] > h2[i] {
			total += h1[i]
		} else {
			total += h2[i]
		}
	}
	if total == 0 {
		return 0
	}
	return inter / total
}

// histogramCorrelation is the Pearson correlation of the two histograms,
// or 0 when the denominator is zero.
func histogramCorrelation(h1, h2 [256]float64) float64 {
	var mean1, mean2 float64
	for i := 0; i < 256; i++ {
		mean1 += h1[i]
		mean2 += h2[i]
	}
	mean1 /= 256
	mean2 /= 256

	var numerator, denom1, denom2 float64
	for i := 0; i < 256; i++ {
		d1 := h1[i] - mean1
		d2 := h2[i] - mean2
		numerator += d1 * d2
		denom1 += d1 * d1
		denom2 += d2 * d2
	}

	denominator := math.Sqrt(denom1 * denom2)
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// mseSimilarity converts the mean squared pixel difference to a
// similarity via 1 / (1 + mse/10000).
func mseSimilarity(a, b []byte) float64 {
	var sum float64
	for i := range a {
		d := float64(int(a[i]) - int(b[i]))
		sum += d * d
	}
	mse := sum / float64(len(a))
	return 1.0 / (1.0 + mse/10000.0)
}

// ssim is a simplified single-window structural similarity index,
// clamped to [0, 1].
func ssim(a, b []byte) float64 {
	var mean1, mean2 float64
	for i := range a {
		mean1 += float64(a[i])
		mean2 += float64(b[i])
	}
	n := float64(len(a))
	mean1 /= n
	mean2 /= n

	var var1, var2, cov float64
	for i := range a {
		d1 := float64(a[i]) - mean1
		d2 := float64(b[i]) - mean2
		var1 += d1 * d1
		var2 += d2 * d2
		cov += d1 * d2
	}
	var1 /= n
	var2 /= n
	cov /= n

	numerator := (2*mean1*mean2 + ssimC1) * (2*cov + ssimC2)
	denominator := (mean1*mean1 + mean2*mean2 + ssimC1) * (var1 + var2 + ssimC2)

	s := numerator / denominator
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
