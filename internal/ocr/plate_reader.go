package ocr

import (
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// plateCharset restricts Tesseract to characters that occur on plates.
const plateCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-"

// PlateReader extracts text from one candidate region of a BGR frame.
type PlateReader interface {
	ReadRegion(img gocv.Mat, region image.Rectangle) (string, error)
	Close() error
}

type tesseractReader struct {
	client *gosseract.Client
}

// NewTesseractReader creates a Tesseract-backed reader. The language
// data for the given code must be installed on the host.
func NewTesseractReader(language string) (PlateReader, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetWhitelist(plateCharset); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR whitelist: %w", err)
	}
	return &tesseractReader{client: client}, nil
}

func (r *tesseractReader) ReadRegion(img gocv.Mat, region image.Rectangle) (string, error) {
	bounds := image.Rect(0, 0, img.Cols(), img.Rows())
	region = region.Intersect(bounds)
	if region.Empty() {
		return "", fmt.Errorf("region lies outside the image")
	}

	roi := img.Region(region)
	defer roi.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, roi)
	if err != nil {
		return "", fmt.Errorf("failed to encode region: %w", err)
	}
	defer buf.Close()

	if err := r.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("failed to set OCR image: %w", err)
	}
	text, err := r.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (r *tesseractReader) Close() error {
	return r.client.Close()
}

// NoopReader stands in when OCR is disabled; the pipeline shape stays
// identical without a Tesseract installation.
type NoopReader struct{}

func (NoopReader) ReadRegion(gocv.Mat, image.Rectangle) (string, error) { return "", nil }

func (NoopReader) Close() error { return nil }
