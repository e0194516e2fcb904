package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-vehicle-inspector/internal/analyzer"
	"go-vehicle-inspector/internal/config"
	apperrors "go-vehicle-inspector/internal/errors"
	"go-vehicle-inspector/internal/repository"
	"go-vehicle-inspector/internal/service"
)

// stubService records calls and returns canned results without
// touching OpenCV.
type stubService struct {
	analyzeCalls int
	lastUpload   service.Upload
	result       *service.UploadAnalysis
	err          error
	history      []repository.AnalysisRecord
}

func (s *stubService) AnalyzeUpload(_ context.Context, upload service.Upload) (*service.UploadAnalysis, error) {
	s.analyzeCalls++
	s.lastUpload = upload
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubService) AnalyzeURL(_ context.Context, imageURL, expectedPlate string) (*service.UploadAnalysis, error) {
	s.analyzeCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubService) History(context.Context, int) ([]repository.AnalysisRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

func newStub() *stubService {
	return &stubService{
		result: &service.UploadAnalysis{
			Filename: "car.png",
			Color:    analyzer.ColorRed,
			Plates: []analyzer.PlateRegion{
				{X: 50, Y: 60, Width: 60, Height: 20, Area: 1180},
			},
			ProcessingTimeSec: 0.01,
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Host:           "127.0.0.1",
		Port:           "8000",
		RequestTimeout: 5 * time.Second,
		MaxUploadSize:  1024 * 1024,
	}
}

func multipartBody(t *testing.T, fieldName, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if fieldName != "" {
		part, err := writer.CreateFormFile(fieldName, filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestGetIndex_RendersForm(t *testing.T) {
	handler := NewHandler(newStub(), nil, testConfig())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<form") {
		t.Error("response does not contain the upload form")
	}
}

func TestPostUpload_MissingFilePart(t *testing.T) {
	stub := newStub()
	handler := NewHandler(stub, nil, testConfig())

	body, contentType := multipartBody(t, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), errNoFilePart) {
		t.Errorf("body does not contain %q", errNoFilePart)
	}
	if stub.analyzeCalls != 0 {
		t.Error("analysis must not run without a file part")
	}
}

func TestPostUpload_DisallowedExtension(t *testing.T) {
	stub := newStub()
	handler := NewHandler(stub, nil, testConfig())

	body, contentType := multipartBody(t, "file", "photo.txt", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not allowed") {
		t.Error("body does not mention the disallowed extension")
	}
	if stub.analyzeCalls != 0 {
		t.Error("analysis must not run for a .txt upload")
	}
}

func TestPostUpload_ExtensionCaseInsensitive(t *testing.T) {
	stub := newStub()
	handler := NewHandler(stub, nil, testConfig())

	body, contentType := multipartBody(t, "file", "CAR.JPG", []byte("fake-jpeg"))
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if stub.analyzeCalls != 1 {
		t.Errorf("analyzeCalls = %d, want 1", stub.analyzeCalls)
	}
	if stub.lastUpload.Filename != "CAR.JPG" {
		t.Errorf("Filename = %q, want CAR.JPG", stub.lastUpload.Filename)
	}
}

func TestPostUpload_RendersResult(t *testing.T) {
	handler := NewHandler(newStub(), nil, testConfig())

	body, contentType := multipartBody(t, "file", "car.png", []byte("fake-png"))
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	page := rec.Body.String()
	if !strings.Contains(page, "Red") {
		t.Error("result page does not show the dominant color")
	}
	if !strings.Contains(page, "60") {
		t.Error("result page does not show the plate candidate")
	}
}

func TestPostAPIAnalyze_JSONResponse(t *testing.T) {
	handler := NewHandler(newStub(), nil, testConfig())

	body, contentType := multipartBody(t, "file", "car.jpeg", []byte("fake-jpeg"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result service.UploadAnalysis
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if result.Color != analyzer.ColorRed {
		t.Errorf("color = %q, want Red", result.Color)
	}
	if len(result.Plates) != 1 {
		t.Errorf("plates = %d, want 1", len(result.Plates))
	}
}

func TestPostAPIAnalyze_ProcessingErrorStatus(t *testing.T) {
	stub := newStub()
	stub.err = apperrors.NewProcessingError("failed to decode image", nil)
	handler := NewHandler(stub, nil, testConfig())

	body, contentType := multipartBody(t, "file", "car.png", []byte("not-an-image"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestPostAPIAnalyzeURL_InvalidBody(t *testing.T) {
	stub := newStub()
	handler := NewHandler(stub, nil, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-url", strings.NewReader(`{"url": "not a url"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if stub.analyzeCalls != 0 {
		t.Error("analysis must not run for an invalid URL body")
	}
}

func TestGetHistory(t *testing.T) {
	stub := newStub()
	stub.history = []repository.AnalysisRecord{
		{ID: 2, Filename: "b.png", Color: analyzer.ColorNone},
		{ID: 1, Filename: "a.png", Color: analyzer.ColorGreen},
	}
	handler := NewHandler(stub, nil, testConfig())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?limit=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var records []repository.AnalysisRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(records) != 2 || records[0].ID != 2 {
		t.Errorf("unexpected history payload: %+v", records)
	}
}

func TestGetHealth(t *testing.T) {
	handler := NewHandler(newStub(), nil, testConfig())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "available") {
		t.Error("health payload does not report availability")
	}
}
