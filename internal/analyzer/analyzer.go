package analyzer

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// VehicleAnalyzer runs the color and plate heuristics over a decoded
// frame. Implementations are stateless: one image in, one result out,
// with no shared mutable state across calls.
type VehicleAnalyzer interface {
	// Analyze expects a non-empty 3-channel 8-bit BGR mat. The input
	// is never mutated; all intermediate buffers are derived copies.
	Analyze(img gocv.Mat) (AnalysisResult, error)
}

type vehicleAnalyzer struct {
	thresholds Thresholds
}

// NewVehicleAnalyzer creates an analyzer with the given tuning.
func NewVehicleAnalyzer(t Thresholds) VehicleAnalyzer {
	return &vehicleAnalyzer{thresholds: t}
}

func (a *vehicleAnalyzer) Analyze(img gocv.Mat) (AnalysisResult, error) {
	if img.Empty() {
		return AnalysisResult{}, fmt.Errorf("input image is empty")
	}
	if img.Channels() != 3 {
		return AnalysisResult{}, fmt.Errorf("expected 3-channel BGR image, got %d channels", img.Channels())
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(img, &gray, gocv.ColorBGRToGray); err != nil {
		return AnalysisResult{}, fmt.Errorf("grayscale conversion: %w", err)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := a.thresholds.BlurKernel
	if err := gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault); err != nil {
		return AnalysisResult{}, fmt.Errorf("gaussian blur: %w", err)
	}

	color, err := a.dominantColor(img)
	if err != nil {
		return AnalysisResult{}, err
	}

	plates, err := a.detectPlates(blurred)
	if err != nil {
		return AnalysisResult{}, err
	}

	variance, err := a.laplacianVariance(gray)
	if err != nil {
		return AnalysisResult{}, err
	}

	return AnalysisResult{
		Color:        color,
		Plates:       plates,
		LaplacianVar: variance,
		Blurry:       variance < a.thresholds.BlurVariance,
	}, nil
}
