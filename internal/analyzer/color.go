package analyzer

import (
	"fmt"

	"gocv.io/x/gocv"
)

// dominantColor counts pixels inside each HSV band over the whole
// frame. A label wins only if its count strictly exceeds both others;
// ties and all-zero counts yield ColorNone. The counts are global raw
// totals with no notion of a contiguous vehicle region.
func (a *vehicleAnalyzer) dominantColor(img gocv.Mat) (ColorLabel, error) {
	hsv := gocv.NewMat()
	defer hsv.Close()
	if err := gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV); err != nil {
		return ColorNone, fmt.Errorf("hsv conversion: %w", err)
	}

	mask := gocv.NewMat()
	defer mask.Close()

	counts := make(map[ColorLabel]int, len(a.thresholds.Bands))
	for _, band := range a.thresholds.Bands {
		if err := gocv.InRangeWithScalar(hsv, band.Lower, band.Upper, &mask); err != nil {
			return ColorNone, fmt.Errorf("range mask for %s: %w", band.Label, err)
		}
		counts[band.Label] = gocv.CountNonZero(mask)
	}

	for _, band := range a.thresholds.Bands {
		dominates := true
		for _, other := range a.thresholds.Bands {
			if other.Label == band.Label {
				continue
			}
			if counts[band.Label] <= counts[other.Label] {
				dominates = false
				break
			}
		}
		if dominates {
			return band.Label, nil
		}
	}
	return ColorNone, nil
}
