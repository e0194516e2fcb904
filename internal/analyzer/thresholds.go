package analyzer

import "gocv.io/x/gocv"

// ColorBand is an inclusive HSV range whose pixel count is credited to
// one color label. Hue follows the 8-bit OpenCV convention (0-180),
// saturation and value are 0-255.
type ColorBand struct {
	Label ColorLabel
	Lower gocv.Scalar
	Upper gocv.Scalar
}

// PlateFilter bounds accepted plate candidates. Both comparisons are
// strict, so a candidate sitting exactly on a boundary is rejected.
type PlateFilter struct {
	MinAspect float64
	MaxAspect float64
	MinArea   float64
	MaxArea   float64
}

// Thresholds collects every hand-picked constant of the heuristic so
// the whole tuning surface can be audited and tested in isolation from
// the web glue.
type Thresholds struct {
	// BlurKernel is the side of the square Gaussian kernel applied
	// before edge detection; sigma is derived from the kernel size.
	BlurKernel int

	// Canny hysteresis thresholds.
	CannyLow  float32
	CannyHigh float32

	Bands []ColorBand
	Plate PlateFilter

	// BlurVariance is the Laplacian-variance level below which the
	// frame is flagged blurry.
	BlurVariance float64
}

// DefaultThresholds returns the reference tuning of the heuristic.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BlurKernel: 5,
		CannyLow:   200,
		CannyHigh:  400,
		Bands: []ColorBand{
			{Label: ColorRed, Lower: gocv.NewScalar(170, 100, 100, 0), Upper: gocv.NewScalar(180, 255, 255, 0)},
			{Label: ColorBlue, Lower: gocv.NewScalar(100, 100, 100, 0), Upper: gocv.NewScalar(140, 255, 255, 0)},
			{Label: ColorGreen, Lower: gocv.NewScalar(40, 50, 50, 0), Upper: gocv.NewScalar(80, 255, 255, 0)},
		},
		Plate: PlateFilter{
			MinAspect: 2,
			MaxAspect: 5,
			MinArea:   100,
			MaxArea:   5000,
		},
		BlurVariance: 100,
	}
}
