package synth

import (
	"image"
	"math"
)

// gaussianKernel builds a normalized 2-D gaussian kernel for the given
// standard deviation. Kernel width is ceil(3σ)*2+1 so the tails are cut at
// three standard deviations.
func gaussianKernel(sigma float64) [][]float64 {
	radius := int(math.Ceil(sigma * 3))
	size := radius*2 + 1

	kernel := make([][]float64, size)
	var sum float64
	for ky := 0; ky < size; ky++ {
		kernel[ky] = make([]float64, size)
		for kx := 0; kx < size; kx++ {
			dx := float64(kx - radius)
			dy := float64(ky - radius)
			w := math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
			kernel[ky][kx] = w
			sum += w
		}
	}
	for ky := range kernel {
		for kx := range kernel[ky] {
			kernel[ky][kx] /= sum
		}
	}
	return kernel
}

// gaussianBlur convolves every channel, alpha included, with a gaussian
// kernel. Border pixels renormalize over the in-bounds taps only — no
// wraparound or reflection, so edge intensity is preserved instead of
// bleeding in black.
func gaussianBlur(src *image.NRGBA, sigma float64) *image.NRGBA {
	if sigma <= 0 {
		return src
	}

	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewNRGBA(bounds)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a, weight float64
			for ky := -radius; ky <= radius; ky++ {
				sy := y + ky
				if sy < 0 || sy >= h {
					continue
				}
				for kx := -radius; kx <= radius; kx++ {
					sx := x + kx
					if sx < 0 || sx >= w {
						continue
					}
					kw := kernel[ky+radius][kx+radius]
					i := src.PixOffset(bounds.Min.X+sx, bounds.Min.Y+sy)
					r += kw * float64(src.Pix[i])
					g += kw * float64(src.Pix[i+1])
					b += kw * float64(src.Pix[i+2])
					a += kw * float64(src.Pix[i+3])
					weight += kw
				}
			}
			i := dst.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			dst.Pix[i] = uint8(r/weight + 0.5)
			dst.Pix[i+1] = uint8(g/weight + 0.5)
			dst.Pix[i+2] = uint8(b/weight + 0.5)
			dst.Pix[i+3] = uint8(a/weight + 0.5)
		}
	}
	return dst
}
