package report

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	appctx "github.com/welldanyogia/servicedesk-audit/internal/context"
	"github.com/welldanyogia/servicedesk-audit/internal/logger"
)

// Error codes
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeUnknownReportType  = "UNKNOWN_REPORT_TYPE"
	CodeInvalidDateRange   = "INVALID_DATE_RANGE"
	CodeArchiveUnavailable = "ARCHIVE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// maxBodyBytes caps the size of a report request body
const maxBodyBytes = 64 << 10

// APIResponse represents the standard API response format
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIError represents the error detail in API response
type APIError struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

// Handler handles HTTP requests for audit report endpoints
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Types handles GET /api/v1/reports/audit/types
func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, http.StatusOK, map[string]interface{}{
		"types": Types(),
	})
}

// Get handles GET /api/v1/reports/audit
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	body := GenerateRequest{
		Type:      q.Get("type"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Format:    q.Get("format"),
		Filters: FilterRequest{
			UserID:    q.Get("user_id"),
			Actions:   splitList(q.Get("actions")),
			IPAddress: q.Get("ip_address"),
			Email:     q.Get("email"),
		},
	}

	h.serve(w, r, body)
}

// Post handles POST /api/v1/reports/audit
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeValidationError, "Invalid request body", nil)
		return
	}

	h.serve(w, r, body)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, body GenerateRequest) {
	req, details := body.ToRequest(h.service.Formatter().Location())
	if details != nil {
		h.writeError(w, http.StatusBadRequest, CodeValidationError, "Invalid report request", details)
		return
	}

	userID, _ := appctx.ExtractUserID(r.Context())
	email, _ := appctx.ExtractEmail(r.Context())
	logger.WithCorrelationID(r.Context(), h.logger).Info("Report requested",
		slog.String("user_id", userID),
		slog.String("requested_by", email),
		slog.String("type", string(req.Type)),
		slog.String("format", string(req.Format)),
		slog.Bool("archive", body.Archive),
	)

	if body.Archive {
		if req.Format != FormatCSV && req.Format != FormatXLSX {
			h.writeError(w, http.StatusBadRequest, CodeValidationError, "Invalid report request", map[string][]string{
				"format": {"archive requires csv or xlsx"},
			})
			return
		}
		archived, err := h.service.Archive(r.Context(), req)
		if err != nil {
			h.handleReportError(w, r, err)
			return
		}
		h.writeSuccess(w, http.StatusOK, archived)
		return
	}

	if req.Format == FormatJSON {
		result, err := h.service.GenerateReport(r.Context(), req)
		if err != nil {
			h.handleReportError(w, r, err)
			return
		}
		h.writeSuccess(w, http.StatusOK, result)
		return
	}

	export, err := h.service.Export(r.Context(), req)
	if err != nil {
		h.handleReportError(w, r, err)
		return
	}
	h.writeFile(w, export)
}

// handleReportError maps service errors to HTTP responses
func (h *Handler) handleReportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUnknownReportType):
		h.writeError(w, http.StatusBadRequest, CodeUnknownReportType, "Unknown report type", nil)
	case errors.Is(err, ErrInvalidDateRange):
		h.writeError(w, http.StatusBadRequest, CodeInvalidDateRange, "Start date must not be after end date", nil)
	case errors.Is(err, ErrUnsupportedFormat):
		h.writeError(w, http.StatusBadRequest, CodeValidationError, "Unsupported output format", map[string][]string{
			"format": {"must be one of: json csv xlsx"},
		})
	case errors.Is(err, ErrArchiveUnavailable):
		h.writeError(w, http.StatusServiceUnavailable, CodeArchiveUnavailable, "Report archive is not available", nil)
	default:
		logger.WithCorrelationID(r.Context(), h.logger).Error("Report request failed",
			slog.String("error", err.Error()),
		)
		h.writeError(w, http.StatusInternalServerError, CodeInternalError, "An internal error occurred", nil)
	}
}

func (h *Handler) writeFile(w http.ResponseWriter, export *Export) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Body); err != nil {
		h.logger.Warn("Failed to write report file", slog.String("error", err.Error()))
	}
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	response := APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, statusCode int, code, message string, details map[string][]string) {
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode error response", slog.String("error", err.Error()))
	}
}
