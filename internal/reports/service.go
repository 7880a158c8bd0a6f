package reports

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"academic-analytics/report-backend/internal/reports/export"
	"academic-analytics/report-backend/internal/reports/paths"
)

// PathResolver maps a report filename to the full path it is saved at
type PathResolver interface {
	ResolveOutputPath(filename string) (string, error)
}

// Renderer lays out a document and writes it to path
type Renderer interface {
	RenderToFile(path string, doc export.Document) error
}

// Service generates academic reports
type Service struct {
	resolver PathResolver
	renderer Renderer
	branding Branding
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes a Service
type Option func(*Service)

// WithBranding overrides the footer labels and palette
func WithBranding(b Branding) Option {
	return func(s *Service) { s.branding = b }
}

// WithClock overrides the clock used for the banner date
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new reports service
func NewService(resolver PathResolver, renderer Renderer, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		resolver: resolver,
		renderer: renderer,
		branding: DefaultBranding(),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate renders the report synchronously. Every failure, including a
// panic while resolving the path or rendering, is returned as an
// unsuccessful result.
func (s *Service) Generate(req ReportRequest) (result GenerationResult) {
	startTime := time.Now()

	var path string
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if path == "" {
			err := &paths.PathError{Op: "resolve output path", Path: req.Filename, Err: fmt.Errorf("%v", r)}
			s.logger.Error("Report path resolution panicked", zap.String("filename", req.Filename), zap.Error(err))
			result = GenerationResult{Message: "Path Error: " + err.Error(), Err: err}
			return
		}
		err := &export.RenderError{Op: "render report", Err: fmt.Errorf("%v", r)}
		s.logger.Error("Report rendering panicked", zap.String("path", path), zap.Error(err))
		result = GenerationResult{Message: err.Error(), Err: err}
	}()

	resolved, err := s.resolver.ResolveOutputPath(req.Filename)
	if err != nil {
		s.logger.Error("Failed to resolve report path",
			zap.String("filename", req.Filename),
			zap.Error(err))
		return GenerationResult{Message: "Path Error: " + err.Error(), Err: err}
	}
	path = resolved

	table, totals := BuildTable(req.Subjects)
	doc := export.Document{
		Title:    reportTitle,
		Author:   s.branding.Attribution,
		Table:    table,
		Decorate: academicDecorator(s.branding, req.TotalAvg, req.Classification, s.now()),
	}

	if err := s.renderer.RenderToFile(path, doc); err != nil {
		var renderErr *export.RenderError
		if !errors.As(err, &renderErr) {
			err = &export.RenderError{Op: "render report", Err: err}
		}
		s.logger.Error("Failed to generate report",
			zap.String("path", path),
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
		return GenerationResult{Message: err.Error(), Err: err}
	}

	s.logger.Info("Report generated",
		zap.String("path", path),
		zap.Int("subjects", len(req.Subjects)),
		zap.Float64("total_coeff", totals.Coeff),
		zap.Float64("total_weighted", totals.Weighted),
		zap.Duration("duration", time.Since(startTime)))

	return GenerationResult{
		Success: true,
		Message: "Saved to: " + path,
		Path:    path,
	}
}

// GenerateAsync runs Generate on a new goroutine and returns immediately.
// callback, when non-nil, is invoked exactly once with the result. There is
// no cancellation and nothing waits for the goroutine on shutdown.
func (s *Service) GenerateAsync(req ReportRequest, callback func(GenerationResult)) {
	go func() {
		result := s.Generate(req)
		if callback != nil {
			callback(result)
		}
	}()
}

// ExportTable writes the report table in a tabular format
func (s *Service) ExportTable(req ReportRequest, format ExportFormat, w io.Writer) error {
	table, _ := BuildTable(req.Subjects)

	switch format {
	case ExportFormatCSV:
		return export.NewCSVExporter(w, export.DefaultCSVOptions()).WriteTable(table)
	case ExportFormatXLSX:
		e, err := export.NewExcelExporter(export.DefaultExcelOptions())
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.WriteTable(table); err != nil {
			return err
		}
		return e.WriteTo(w)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
