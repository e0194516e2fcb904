package analyzer

import (
	"fmt"

	"gocv.io/x/gocv"
)

// detectPlates extracts outermost contours from a Canny edge map of
// the blurred grayscale frame and keeps bounding rectangles whose
// aspect ratio and enclosed contour area fall inside the plate filter.
// Overlapping or nested candidates are not suppressed.
func (a *vehicleAnalyzer) detectPlates(blurred gocv.Mat) ([]PlateRegion, error) {
	edges := gocv.NewMat()
	defer edges.Close()
	if err := gocv.Canny(blurred, &edges, a.thresholds.CannyLow, a.thresholds.CannyHigh); err != nil {
		return nil, fmt.Errorf("edge detection: %w", err)
	}

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	filter := a.thresholds.Plate
	plates := []PlateRegion{}
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		rect := gocv.BoundingRect(contour)
		w, h := rect.Dx(), rect.Dy()
		if h == 0 {
			// Degenerate contour; treat as failing the aspect test.
			continue
		}
		aspect := float64(w) / float64(h)
		if aspect <= filter.MinAspect || aspect >= filter.MaxAspect {
			continue
		}
		area := gocv.ContourArea(contour)
		if area <= filter.MinArea || area >= filter.MaxArea {
			continue
		}
		plates = append(plates, PlateRegion{
			X:      rect.Min.X,
			Y:      rect.Min.Y,
			Width:  w,
			Height: h,
			Area:   area,
		})
	}
	return plates, nil
}
