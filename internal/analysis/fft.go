package analysis

import "math"

// fft computes an in-place radix-2 Cooley-Tukey transform. The input is
// zero-padded to the next power of two by the caller.
func fft(re, im []float64) {
	n := len(re)
	if n < 2 {
		return
	}

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		ang := -2 * math.Pi / float64(length)
		wRe, wIm := math.Cos(ang), math.Sin(ang)
		for start := 0; start < n; start += length {
			curRe, curIm := 1.0, 0.0
			for k := 0; k < length/2; k++ {
				i := start + k
				j := start + k + length/2
				tRe := re[j]*curRe - im[j]*curIm
				tIm := re[j]*curIm + im[j]*curRe
				re[j] = re[i] - tRe
				im[j] = im[i] - tIm
				re[i] += tRe
				im[i] += tIm
				curRe, curIm = curRe*wRe-curIm*wIm, curRe*wIm+curIm*wRe
			}
		}
	}
}

// Spectrum returns the magnitude of the first half of the transform of the
// given samples, zero-padded to a power of two.
func Spectrum(samples []float64) []float64 {
	n := 1
	for n < len(samples) {
		n <<= 1
	}
	re := make([]float64, n)
	im := make([]float64, n)
	copy(re, samples)
	fft(re, im)

	mag := make([]float64, n/2)
	for i := range mag {
		mag[i] = math.Hypot(re[i], im[i])
	}
	return mag
}
