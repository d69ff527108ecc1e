package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/welldanyogia/servicedesk-audit/internal/logger"
	"github.com/welldanyogia/servicedesk-audit/internal/metrics"
	"github.com/welldanyogia/servicedesk-audit/internal/storage"
)

// Content types of rendered reports
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Archiver stores rendered report files and hands out download links
type Archiver interface {
	Upload(ctx context.Context, key, contentType string, body []byte) error
	GetPresignedURL(ctx context.Context, key string) (string, time.Duration, error)
}

// ServiceConfig holds the dependencies of a Service
type ServiceConfig struct {
	Activity ActivityReader
	Users    UserReader
	Location *time.Location
	// Sanitizer normalizes free text and detects markup; nil leaves values untouched
	Sanitizer TextCleaner
	// Archive is optional; without it Archive returns ErrArchiveUnavailable
	Archive Archiver
	Logger  *slog.Logger
}

// Service generates, renders and archives audit reports
type Service struct {
	sources   Sources
	formatter *Formatter
	archive   Archiver
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new report service
func NewService(cfg ServiceConfig) *Service {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		sources:   Sources{Activity: cfg.Activity, Users: cfg.Users},
		formatter: NewFormatter(cfg.Location, cfg.Sanitizer),
		archive:   cfg.Archive,
		logger:    log,
		now:       time.Now,
	}
}

// Formatter returns the formatter the service renders values with
func (s *Service) Formatter() *Formatter {
	return s.formatter
}

// GenerateReport validates req and runs the generator for its type.
// Unknown types and inverted ranges fail before any query is made.
func (s *Service) GenerateReport(ctx context.Context, req Request) (*Result, error) {
	return s.generate(ctx, req, FormatJSON)
}

func (s *Service) generate(ctx context.Context, req Request, format Format) (*Result, error) {
	gen, ok := registry[req.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReportType, req.Type)
	}
	if req.DateRange.Start.After(req.DateRange.End) {
		return nil, ErrInvalidDateRange
	}

	log := logger.WithCorrelationID(ctx, s.logger)
	start := time.Now()

	records, summary, err := gen.generate(ctx, s.sources, s.formatter, req)
	metrics.ObserveReport(string(req.Type), string(format), len(records), time.Since(start), err)
	if err != nil {
		log.Error("Report generation failed",
			slog.String("type", string(req.Type)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to generate %s report: %w", req.Type, err)
	}

	log.Info("Report generated",
		slog.String("type", string(req.Type)),
		slog.String("format", string(format)),
		slog.Int("rows", len(records)),
		slog.Duration("duration", time.Since(start)),
	)

	loc := s.formatter.Location()
	return &Result{
		Type:        req.Type,
		Title:       Title(req.Type),
		GeneratedAt: s.now().In(loc),
		DateRange: DateRange{
			Start: req.DateRange.Start.In(loc),
			End:   req.DateRange.End.In(loc),
		},
		TotalRecords: len(records),
		Data:         records,
		Summary:      summary,
	}, nil
}

// Export generates the report and renders it as CSV or XLSX
func (s *Service) Export(ctx context.Context, req Request) (*Export, error) {
	if req.Format != FormatCSV && req.Format != FormatXLSX {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, req.Format)
	}

	result, err := s.generate(ctx, req, req.Format)
	if err != nil {
		return nil, err
	}

	return s.render(result, req.Format)
}

func (s *Service) render(result *Result, format Format) (*Export, error) {
	filename := fmt.Sprintf("%s-%s.%s", Slug(result.Type), result.GeneratedAt.Format("2006-01-02"), format)

	switch format {
	case FormatCSV:
		body, err := ToCSV(result)
		if err != nil {
			return nil, err
		}
		return &Export{Body: []byte(body), ContentType: ContentTypeCSV, Filename: filename}, nil
	case FormatXLSX:
		body, err := ToSpreadsheet(result)
		if err != nil {
			return nil, err
		}
		return &Export{Body: body, ContentType: ContentTypeXLSX, Filename: filename}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Archive exports the report, uploads the file to archive storage and
// returns a presigned download link
func (s *Service) Archive(ctx context.Context, req Request) (*ArchivedExport, error) {
	if s.archive == nil {
		return nil, ErrArchiveUnavailable
	}
	if req.Format != FormatCSV && req.Format != FormatXLSX {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, req.Format)
	}

	result, err := s.generate(ctx, req, req.Format)
	if err != nil {
		return nil, err
	}
	export, err := s.render(result, req.Format)
	if err != nil {
		return nil, err
	}

	key := archiveKey(req.Type, result.GeneratedAt, export.Filename)
	if err := s.archive.Upload(ctx, key, export.ContentType, export.Body); err != nil {
		metrics.ReportArchivesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to upload report archive: %w", err)
	}

	url, expiresIn, err := s.archive.GetPresignedURL(ctx, key)
	if err != nil {
		metrics.ReportArchivesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to presign report archive: %w", err)
	}
	metrics.ReportArchivesTotal.WithLabelValues("success").Inc()

	logger.WithCorrelationID(ctx, s.logger).Info("Report archived",
		slog.String("type", string(req.Type)),
		slog.String("key", key),
	)

	return &ArchivedExport{
		Key:              key,
		Filename:         export.Filename,
		URL:              url,
		ExpiresIn:        expiresIn,
		ExpiresInSeconds: int64(expiresIn.Seconds()),
		TotalRecords:     result.TotalRecords,
	}, nil
}

// archiveKey builds reports/<slug>/<yyyy/mm>/<uuid>-<filename>
func archiveKey(t ReportType, at time.Time, filename string) string {
	return fmt.Sprintf("%s%s/%s/%s-%s", storage.ArchivePrefix, Slug(t), at.Format("2006/01"), uuid.New().String(), filename)
}
