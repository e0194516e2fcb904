package analyzer

import (
	"fmt"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// laplacianVariance measures frame sharpness: the variance of the
// Laplacian response drops toward zero on defocused or featureless
// frames.
func (a *vehicleAnalyzer) laplacianVariance(gray gocv.Mat) (float64, error) {
	lap := gocv.NewMat()
	defer lap.Close()
	if err := gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault); err != nil {
		return 0, fmt.Errorf("laplacian: %w", err)
	}

	data, err := lap.DataPtrFloat64()
	if err != nil {
		return 0, fmt.Errorf("laplacian data: %w", err)
	}
	if len(data) < 2 {
		return 0, nil
	}
	return stat.Variance(data, nil), nil
}
