package observer

import (
	"context"
	"sync"
	"time"

	"go-vehicle-inspector/internal/analyzer"

	"github.com/sirupsen/logrus"
)

// EventType labels analysis lifecycle events.
type EventType string

const (
	AnalysisCompleted EventType = "analysis_completed"
	AnalysisFailed    EventType = "analysis_failed"
)

// AnalysisEvent describes one finished (or failed) analysis pass.
type AnalysisEvent struct {
	Type           EventType                `json:"event_type"`
	Timestamp      time.Time                `json:"timestamp"`
	Filename       string                   `json:"filename"`
	Result         *analyzer.AnalysisResult `json:"result,omitempty"`
	Error          string                   `json:"error,omitempty"`
	ProcessingTime time.Duration            `json:"processing_time_ms"`
}

// Observer consumes analysis events.
type Observer interface {
	OnEvent(ctx context.Context, event AnalysisEvent)
	Name() string
}

// Subject fans events out to subscribed observers. Delivery is
// synchronous and best-effort; observers must not block.
type Subject struct {
	mu        sync.RWMutex
	observers []Observer
}

func NewSubject() *Subject {
	return &Subject{}
}

func (s *Subject) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Subject) Notify(ctx context.Context, event AnalysisEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.observers {
		o.OnEvent(ctx, event)
	}
}

// LoggingObserver writes each event to the structured log.
type LoggingObserver struct {
	logger *logrus.Logger
}

func NewLoggingObserver(logger *logrus.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) OnEvent(_ context.Context, event AnalysisEvent) {
	entry := o.logger.WithFields(logrus.Fields{
		"event_type":         event.Type,
		"filename":           event.Filename,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
	})

	switch event.Type {
	case AnalysisFailed:
		entry.WithField("error", event.Error).Error("Image analysis failed")
	default:
		if event.Result != nil {
			entry = entry.WithFields(logrus.Fields{
				"color":  event.Result.Color,
				"plates": len(event.Result.Plates),
			})
		}
		entry.Info("Image analysis completed")
	}
}

func (o *LoggingObserver) Name() string {
	return "logging"
}
