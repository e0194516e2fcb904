package analyzer

// ColorLabel identifies the dominant body color found in the frame.
type ColorLabel string

const (
	ColorRed   ColorLabel = "Red"
	ColorBlue  ColorLabel = "Blue"
	ColorGreen ColorLabel = "Green"
	// ColorNone is reported when no color band strictly dominates the
	// other two; exact ties count as None.
	ColorNone ColorLabel = "None"
)

// PlateRegion is an axis-aligned candidate region in image pixel
// coordinates. X and Y give the top-left corner of the upright
// bounding rectangle.
type PlateRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`

	// Area is the enclosed contour area, not Width*Height.
	Area float64 `json:"area"`

	// Text holds the plate reading when OCR is enabled.
	Text string `json:"text,omitempty"`
}

// AnalysisResult is the outcome of a single analysis pass. Plates is
// never nil; candidates appear in contour discovery order and may
// overlap, since the heuristic performs no suppression.
type AnalysisResult struct {
	Color  ColorLabel    `json:"color"`
	Plates []PlateRegion `json:"number_plates"`

	// Quality metrics are informational and never influence the
	// color or plate output.
	LaplacianVar float64 `json:"laplacian_variance"`
	Blurry       bool    `json:"blurry"`
}
