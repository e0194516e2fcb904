package service

import (
	"context"
	"errors"
	"image"
	"net/url"
	"path"
	"time"

	"go-vehicle-inspector/internal/analyzer"
	apperrors "go-vehicle-inspector/internal/errors"
	"go-vehicle-inspector/internal/logger"
	"go-vehicle-inspector/internal/observer"
	"go-vehicle-inspector/internal/ocr"
	"go-vehicle-inspector/internal/repository"
	"go-vehicle-inspector/internal/storage"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Upload is one accepted multipart upload.
type Upload struct {
	Filename      string
	Data          []byte
	ExpectedPlate string
}

// PlateMatch compares an expected plate string against the best OCR
// reading.
type PlateMatch struct {
	Expected string  `json:"expected"`
	BestRead string  `json:"best_read"`
	Score    float64 `json:"score"`
}

// UploadAnalysis is the service-level view of one analysis pass.
type UploadAnalysis struct {
	ID                int64                  `json:"id,omitempty"`
	Filename          string                 `json:"filename"`
	Color             analyzer.ColorLabel    `json:"color"`
	Plates            []analyzer.PlateRegion `json:"number_plates"`
	LaplacianVar      float64                `json:"laplacian_variance"`
	Blurry            bool                   `json:"blurry"`
	PlateMatch        *PlateMatch            `json:"plate_match,omitempty"`
	ArchivedAs        string                 `json:"archived_as,omitempty"`
	ProcessingTimeSec float64                `json:"processing_time_sec"`
}

// AnalysisService runs the full upload pipeline: decode, analyze,
// optionally read plates, persist, archive and notify.
type AnalysisService interface {
	AnalyzeUpload(ctx context.Context, upload Upload) (*UploadAnalysis, error)
	AnalyzeURL(ctx context.Context, imageURL, expectedPlate string) (*UploadAnalysis, error)
	History(ctx context.Context, limit int) ([]repository.AnalysisRecord, error)
}

type analysisService struct {
	analyzer analyzer.VehicleAnalyzer
	reader   ocr.PlateReader
	fetcher  storage.ImageFetcher
	repo     repository.AnalysisRepository
	archiver storage.UploadArchiver
	subject  *observer.Subject
}

// NewAnalysisService wires the pipeline. repo and archiver may be nil;
// the corresponding steps are skipped.
func NewAnalysisService(
	vehicleAnalyzer analyzer.VehicleAnalyzer,
	reader ocr.PlateReader,
	fetcher storage.ImageFetcher,
	repo repository.AnalysisRepository,
	archiver storage.UploadArchiver,
	subject *observer.Subject,
) AnalysisService {
	return &analysisService{
		analyzer: vehicleAnalyzer,
		reader:   reader,
		fetcher:  fetcher,
		repo:     repo,
		archiver: archiver,
		subject:  subject,
	}
}

func (s *analysisService) AnalyzeUpload(ctx context.Context, upload Upload) (*UploadAnalysis, error) {
	return s.analyze(ctx, upload)
}

func (s *analysisService) AnalyzeURL(ctx context.Context, imageURL, expectedPlate string) (*UploadAnalysis, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil || parsed.Host == "" {
		return nil, apperrors.NewValidationError("invalid image URL", err)
	}

	data, err := s.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to fetch image", err)
	}

	filename := path.Base(parsed.Path)
	if filename == "." || filename == "/" {
		filename = "remote-image"
	}
	return s.analyze(ctx, Upload{Filename: filename, Data: data, ExpectedPlate: expectedPlate})
}

func (s *analysisService) History(ctx context.Context, limit int) ([]repository.AnalysisRecord, error) {
	if s.repo == nil {
		return []repository.AnalysisRecord{}, nil
	}
	records, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load analysis history", err)
	}
	if records == nil {
		records = []repository.AnalysisRecord{}
	}
	return records, nil
}

// analyze performs exactly one analysis pass. Every error is terminal
// for the request; there are no retries.
func (s *analysisService) analyze(ctx context.Context, upload Upload) (*UploadAnalysis, error) {
	start := time.Now()

	img, err := gocv.IMDecode(upload.Data, gocv.IMReadColor)
	if err != nil {
		return nil, s.fail(ctx, upload.Filename, start, apperrors.NewProcessingError("failed to decode image", err))
	}
	defer img.Close()
	if img.Empty() {
		err := errors.New("decoded image is empty")
		return nil, s.fail(ctx, upload.Filename, start, apperrors.NewProcessingError("failed to decode image", err))
	}

	result, err := s.analyzer.Analyze(img)
	if err != nil {
		return nil, s.fail(ctx, upload.Filename, start, apperrors.NewProcessingError("image analysis failed", err))
	}

	s.readPlates(img, &result)

	analysis := &UploadAnalysis{
		Filename:     upload.Filename,
		Color:        result.Color,
		Plates:       result.Plates,
		LaplacianVar: result.LaplacianVar,
		Blurry:       result.Blurry,
	}
	if upload.ExpectedPlate != "" {
		analysis.PlateMatch = matchPlate(upload.ExpectedPlate, result.Plates)
	}

	// Persistence, archiving and broadcasting are best-effort: a
	// storage hiccup must not fail a request whose analysis succeeded.
	if s.repo != nil {
		record := &repository.AnalysisRecord{
			Filename:     upload.Filename,
			Color:        result.Color,
			LaplacianVar: result.LaplacianVar,
			Blurry:       result.Blurry,
			Plates:       result.Plates,
		}
		if id, err := s.repo.Save(ctx, record); err != nil {
			logger.WithError(err).WithField("filename", upload.Filename).Error("Failed to persist analysis")
		} else {
			analysis.ID = id
		}
	}

	if s.archiver != nil {
		if name, err := s.archiver.Archive(ctx, upload.Filename, upload.Data); err != nil {
			logger.WithError(err).WithField("filename", upload.Filename).Error("Failed to archive upload")
		} else {
			analysis.ArchivedAs = name
		}
	}

	analysis.ProcessingTimeSec = time.Since(start).Seconds()

	if s.subject != nil {
		s.subject.Notify(ctx, observer.AnalysisEvent{
			Type:           observer.AnalysisCompleted,
			Timestamp:      time.Now().UTC(),
			Filename:       upload.Filename,
			Result:         &result,
			ProcessingTime: time.Since(start),
		})
	}
	return analysis, nil
}

// readPlates fills PlateRegion.Text for each candidate. OCR failures
// only log; an unreadable region keeps its empty text.
func (s *analysisService) readPlates(img gocv.Mat, result *analyzer.AnalysisResult) {
	if s.reader == nil {
		return
	}
	for i, plate := range result.Plates {
		region := image.Rect(plate.X, plate.Y, plate.X+plate.Width, plate.Y+plate.Height)
		text, err := s.reader.ReadRegion(img, region)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"x": plate.X, "y": plate.Y,
			}).Debug("Plate OCR failed for candidate")
			continue
		}
		result.Plates[i].Text = text
	}
}

// matchPlate scores every candidate reading against the expected
// plate and keeps the best.
func matchPlate(expected string, plates []analyzer.PlateRegion) *PlateMatch {
	match := &PlateMatch{Expected: expected}
	best := -1.0
	for _, plate := range plates {
		score := ocr.MatchScore(expected, plate.Text)
		if score > best {
			best = score
			match.BestRead = plate.Text
			match.Score = score
		}
	}
	if best < 0 {
		// No candidates at all: score against an empty reading.
		match.Score = ocr.MatchScore(expected, "")
	}
	return match
}

func (s *analysisService) fail(ctx context.Context, filename string, start time.Time, appErr error) error {
	if s.subject != nil {
		s.subject.Notify(ctx, observer.AnalysisEvent{
			Type:           observer.AnalysisFailed,
			Timestamp:      time.Now().UTC(),
			Filename:       filename,
			Error:          appErr.Error(),
			ProcessingTime: time.Since(start),
		})
	}
	return appErr
}
