package image

import "math"

// psnr computes the peak signal to noise ratio in dB for 8 bit samples, where changedSamples of totalSamples differ
// from the original by exactly one. Identical images have an infinite PSNR.
func psnr(changedSamples, totalSamples int) float64 {
	if totalSamples == 0 || changedSamples == 0 {
		return math.Inf(1)
	}

	mse := float64(changedSamples) / float64(totalSamples)
	return 20 * math.Log10(255/math.Sqrt(mse))
}
