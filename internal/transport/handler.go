package transport

import (
	"embed"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go-vehicle-inspector/internal/config"
	apperrors "go-vehicle-inspector/internal/errors"
	"go-vehicle-inspector/internal/logger"
	"go-vehicle-inspector/internal/service"
	ws "go-vehicle-inspector/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

// allowedExtensions is the upload whitelist, matched case-insensitively.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// User-visible upload error states. None of them reaches the analyzer.
const (
	errNoFilePart     = "No file part"
	errNoSelectedFile = "No selected file"
	errBadExtension   = "File type not allowed; use .png, .jpg or .jpeg"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler builds the full router. hub may be nil, in which case the
// websocket endpoint is not registered.
func NewHandler(svc service.AnalysisService, hub *ws.Hub, cfg *config.Config) http.Handler {
	r := gin.Default()
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.Use(requestSizeLimiter(cfg.MaxUploadSize))

	r.GET("/", renderForm)
	r.POST("/", analyzeForm(svc))
	r.GET("/health", healthCheck)

	api := r.Group("/api")
	api.POST("/analyze", analyzeJSON(svc))
	api.POST("/analyze-url", analyzeURL(svc))
	api.GET("/history", history(svc))

	if hub != nil {
		r.GET("/ws", serveWebsocket(hub))
	}
	return r
}

func renderForm(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{})
}

// analyzeForm handles the browser upload and renders HTML either way.
func analyzeForm(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		upload, userErr, err := extractUpload(c)
		if userErr != "" {
			c.HTML(http.StatusBadRequest, "index.html", gin.H{"Error": userErr})
			return
		}
		if err != nil {
			c.HTML(http.StatusInternalServerError, "index.html", gin.H{"Error": "Could not read the uploaded file"})
			return
		}

		result, err := svc.AnalyzeUpload(c.Request.Context(), upload)
		if err != nil {
			logRequestError(c, err)
			c.HTML(apperrors.GetStatusCode(err), "index.html", gin.H{"Error": "Could not analyze the uploaded image"})
			return
		}
		c.HTML(http.StatusOK, "result.html", result)
	}
}

// analyzeJSON is the same upload flow with a JSON response.
func analyzeJSON(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		upload, userErr, err := extractUpload(c)
		if userErr != "" {
			respondError(c, http.StatusBadRequest, userErr, nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, "could not read upload", err)
			return
		}

		result, err := svc.AnalyzeUpload(c.Request.Context(), upload)
		if err != nil {
			logRequestError(c, err)
			respondError(c, apperrors.GetStatusCode(err), "analysis failed", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

type urlAnalysisRequest struct {
	URL           string `json:"url" binding:"required,url"`
	ExpectedPlate string `json:"expected_plate,omitempty"`
}

func analyzeURL(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req urlAnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		result, err := svc.AnalyzeURL(c.Request.Context(), req.URL, req.ExpectedPlate)
		if err != nil {
			logRequestError(c, err)
			respondError(c, apperrors.GetStatusCode(err), "analysis failed", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func history(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		records, err := svc.History(c.Request.Context(), limit)
		if err != nil {
			logRequestError(c, err)
			respondError(c, apperrors.GetStatusCode(err), "failed to load history", err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "available",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard clients connect from the page this service serves.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func serveWebsocket(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.WithError(err).Warn("Websocket upgrade failed")
			return
		}
		hub.Register(conn)

		// Clients never send data; the read loop only detects closes.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					hub.Unregister(conn)
					return
				}
			}
		}()
	}
}

// extractUpload pulls the multipart file out of the request. userErr
// carries the user-visible validation message; err is an internal read
// failure.
func extractUpload(c *gin.Context) (service.Upload, string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return service.Upload{}, errNoFilePart, nil
	}
	if header.Filename == "" {
		return service.Upload{}, errNoSelectedFile, nil
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		return service.Upload{}, errBadExtension, nil
	}

	data, err := readUpload(header)
	if err != nil {
		return service.Upload{}, "", err
	}
	return service.Upload{
		Filename:      header.Filename,
		Data:          data,
		ExpectedPlate: c.PostForm("expected_plate"),
	}, "", nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func logRequestError(c *gin.Context, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
		"ip":     c.ClientIP(),
	}).Error("Request failed")
}

func respondError(c *gin.Context, code int, message string, err error) {
	resp := ErrorResponse{Error: http.StatusText(code), Message: message}
	if err != nil {
		resp.Message = message + ": " + err.Error()
	}
	c.AbortWithStatusJSON(code, resp)
}
