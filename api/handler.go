package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/couponTracker/coupon-ocr-service/internal/auth"
	"github.com/couponTracker/coupon-ocr-service/internal/cache"
	"github.com/couponTracker/coupon-ocr-service/internal/classify"
	"github.com/couponTracker/coupon-ocr-service/internal/config"
	"github.com/couponTracker/coupon-ocr-service/internal/extract"
	"github.com/couponTracker/coupon-ocr-service/internal/models"
	"github.com/couponTracker/coupon-ocr-service/internal/ocr"
	"github.com/couponTracker/coupon-ocr-service/internal/preprocess"
	"github.com/couponTracker/coupon-ocr-service/internal/scan"
	"github.com/couponTracker/coupon-ocr-service/internal/services"
	"github.com/couponTracker/coupon-ocr-service/internal/storage"
)

const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	Version       = "1.2.0"
)

// Extraction status values the mobile app branches on. A readable image
// that yields no fields is a regular outcome, not an error: the app opens
// the manual entry form.
const (
	StatusCompleted       = "completed"
	StatusNoText          = "no_text"
	StatusEmptyExtraction = "empty_extraction"
)

// Handler handles HTTP requests for coupon scanning
type Handler struct {
	config    *config.Config
	scanner   *scan.Service
	validator *services.CouponValidator
	logger    zerolog.Logger
}

// NewHandler creates a new API handler
func NewHandler(cfg *config.Config, scanner *scan.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		config:    cfg,
		scanner:   scanner,
		validator: services.NewCouponValidator(cfg.Categories),
		logger:    logger,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Scanning
	router.HandleFunc("/api/scan", h.ScanCoupon).Methods("POST")
	router.HandleFunc("/api/scans/recent", h.RecentScans).Methods("GET")

	// Pipeline support
	router.HandleFunc("/api/probe", h.Probe).Methods("POST")
	router.HandleFunc("/api/classify", h.ClassifyText).Methods("POST")
	router.HandleFunc("/api/validate", h.ValidateCoupon).Methods("POST")

	// Token issuance
	router.HandleFunc("/api/login", auth.LoginHandler(h.config.Auth.Clients)).Methods("POST")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/api/health", h.Health).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Memory    MemoryStats       `json:"memory"`
	Tesseract ServiceStatus     `json:"tesseract"`
	Cache     ServiceStatus     `json:"cache"`
	Storage   ServiceStatus     `json:"storage"`
	Engines   map[string]bool   `json:"engines"`
	AI        map[string]string `json:"ai"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint - enhanced for monitoring
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Memory statistics
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// Check services
	tesseractStatus := h.checkTesseract()
	cacheStatus := h.checkCache()
	storageStatus := h.checkStorage()

	// Build response
	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Tesseract: tesseractStatus,
		Cache:     cacheStatus,
		Storage:   storageStatus,
		Engines:   h.scanner.Availability(),
		AI: map[string]string{
			"defaultProvider": h.config.AI.DefaultProvider,
		},
	}

	// Cache and storage are optional; only a missing OCR core degrades us.
	if !tesseractStatus.Available {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkTesseract verifies the Tesseract binary is available
func (h *Handler) checkTesseract() ServiceStatus {
	cmd := exec.Command("tesseract", "--version")
	output, err := cmd.CombinedOutput()

	if err != nil {
		return ServiceStatus{
			Available: false,
			Error:     "tesseract not found or not executable",
		}
	}

	version := "unknown"
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		version = strings.TrimSpace(lines[0])
	}

	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

// checkCache verifies the Redis connection
func (h *Handler) checkCache() ServiceStatus {
	if cache.Client == nil {
		return ServiceStatus{
			Available: false,
			Error:     "cache client not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "Redis",
	}
}

// checkStorage verifies the MinIO connection
func (h *Handler) checkStorage() ServiceStatus {
	if storage.Client == nil {
		return ServiceStatus{
			Available: false,
			Error:     "storage client not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3",
	}
}

// ScanResponse is the envelope returned by POST /api/scan
type ScanResponse struct {
	models.ScanResult
	ScanID           string `json:"scanId"`
	ExtractionStatus string `json:"extractionStatus"`
	ImageURL         string `json:"imageUrl,omitempty"`
}

// ScanCoupon handles coupon image uploads
func (h *Handler) ScanCoupon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	claims, ok := auth.GetClaimsFromContext(ctx)
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Parse multipart form
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "file too large or invalid form data")
		return
	}

	// Accept both "file" and "image" field names
	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("image")
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "no file provided (use 'file' or 'image' field)")
			return
		}
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	// Generate unique filename
	scanID := uuid.New().String()
	filename := fmt.Sprintf("%s_%s%s",
		time.Now().Format("20060102_150405"),
		scanID[:8],
		storage.GetFileExtension(contentType),
	)

	// Archive the upload (best effort, a scan works without it)
	var imageURL string
	if storage.Client != nil {
		imageURL, err = storage.UploadCouponImage(
			ctx,
			claims.ClientID,
			filename,
			bytes.NewReader(imageData),
			int64(len(imageData)),
			contentType,
		)
		if err != nil {
			h.logger.Warn().Err(err).Msg("failed to archive coupon image")
			imageURL = ""
		} else if signed, err := storage.GetPresignedURL(ctx, imageURL); err == nil {
			imageURL = signed
		}
	}

	result, err := h.scanner.Scan(ctx, &models.ScanRequest{ImageData: imageData})
	if err != nil {
		h.respondScanError(w, scanID, imageURL, err)
		return
	}

	if err := cache.PushRecent(ctx, claims.ClientID, result); err != nil {
		h.logger.Warn().Err(err).Msg("failed to record recent scan")
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ScanResponse{
		ScanResult:       *result,
		ScanID:           scanID,
		ExtractionStatus: StatusCompleted,
		ImageURL:         imageURL,
	})
}

// respondScanError maps pipeline errors onto the response contract: an
// undecodable upload is the client's fault, while a readable image that
// yields nothing comes back 200 with an extraction status the app resolves
// through manual entry.
func (h *Handler) respondScanError(w http.ResponseWriter, scanID, imageURL string, err error) {
	switch {
	case errors.Is(err, preprocess.ErrUndecodable):
		h.sendError(w, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, ocr.ErrNoTextRecognized):
		h.respondEmptyScan(w, scanID, imageURL, StatusNoText, err)

	case errors.Is(err, extract.ErrEmptyExtraction):
		h.respondEmptyScan(w, scanID, imageURL, StatusEmptyExtraction, err)

	default:
		h.logger.Error().Err(err).Msg("scan failed")
		h.sendError(w, http.StatusInternalServerError, "scan failed")
	}
}

func (h *Handler) respondEmptyScan(w http.ResponseWriter, scanID, imageURL, status string, err error) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ScanResponse{
		ScanResult: models.ScanResult{
			Success: false,
			Coupon:  &models.CouponInfo{},
			Error:   err.Error(),
		},
		ScanID:           scanID,
		ExtractionStatus: status,
		ImageURL:         imageURL,
	})
}

// Probe re-checks engine availability on demand
func (h *Handler) Probe(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	engines := h.scanner.RefreshAvailability(r.Context())

	json.NewEncoder(w).Encode(map[string]interface{}{
		"engines": engines,
	})
}

// ClassifyText maps raw coupon text to a platform category
func (h *Handler) ClassifyText(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		h.sendError(w, http.StatusBadRequest, "text is required")
		return
	}

	json.NewEncoder(w).Encode(map[string]string{
		"category": classify.Classify(req.Text),
	})
}

// ValidateCoupon checks a manually entered coupon record
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var info models.CouponInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	json.NewEncoder(w).Encode(h.validator.Validate(&info))
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
