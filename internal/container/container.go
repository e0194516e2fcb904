package container

import (
	"fmt"
	"net/http"

	"go-vehicle-inspector/internal/analyzer"
	"go-vehicle-inspector/internal/config"
	"go-vehicle-inspector/internal/logger"
	"go-vehicle-inspector/internal/observer"
	"go-vehicle-inspector/internal/ocr"
	"go-vehicle-inspector/internal/repository/sqlite"
	"go-vehicle-inspector/internal/service"
	"go-vehicle-inspector/internal/storage"
	"go-vehicle-inspector/internal/transport"
	ws "go-vehicle-inspector/internal/websocket"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	db              *sqlite.DB
	plateReader     ocr.PlateReader
	hub             *ws.Hub
	analysisService service.AnalysisService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	vehicleAnalyzer := analyzer.NewVehicleAnalyzer(analyzer.DefaultThresholds())

	plateReader, err := buildPlateReader(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		plateReader.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	analysisRepository := sqlite.NewAnalysisRepository(db)

	archiver, err := buildArchiver(cfg)
	if err != nil {
		plateReader.Close()
		db.Close()
		return nil, err
	}

	hub := ws.NewHub()
	subject := observer.NewSubject()
	subject.Subscribe(observer.NewLoggingObserver(logger.Logger))
	subject.Subscribe(hub)

	imageFetcher := storage.NewHTTPImageFetcher(cfg.MaxUploadSize)

	analysisService := service.NewAnalysisService(
		vehicleAnalyzer,
		plateReader,
		imageFetcher,
		analysisRepository,
		archiver,
		subject,
	)
	handler := transport.NewHandler(analysisService, hub, cfg)

	return &Container{
		config:          cfg,
		db:              db,
		plateReader:     plateReader,
		hub:             hub,
		analysisService: analysisService,
		handler:         handler,
	}, nil
}

func buildPlateReader(cfg *config.Config) (ocr.PlateReader, error) {
	if !cfg.OCREnabled {
		return ocr.NoopReader{}, nil
	}
	reader, err := ocr.NewTesseractReader(cfg.OCRLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize plate reader: %w", err)
	}
	return reader, nil
}

func buildArchiver(cfg *config.Config) (storage.UploadArchiver, error) {
	if !cfg.ArchiveEnabled() {
		logger.Info("Upload archiving disabled; no Azure credentials configured")
		return nil, nil
	}
	archiver, err := storage.NewAzureArchiver(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload archiver: %w", err)
	}
	return archiver, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Hub returns the websocket hub for event streaming
func (c *Container) Hub() *ws.Hub {
	return c.hub
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases the container's resources
func (c *Container) Close() error {
	if err := c.plateReader.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close plate reader")
	}
	return c.db.Close()
}
