package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"academic-analytics/report-backend/pkg/storage"
)

const archiveTimeout = 2 * time.Minute

// Broadcaster pushes events to connected UI clients
type Broadcaster interface {
	Broadcast(eventType string, data map[string]interface{})
}

// Archive copies generated reports to object storage
type Archive struct {
	Client storage.S3Client
	Bucket string
	Prefix string
}

// Handler handles HTTP requests for academic reports
type Handler struct {
	service  *Service
	jobs     *JobTracker
	notifier Broadcaster
	archive  *Archive
	logger   *zap.Logger
}

// HandlerOption customizes a Handler
type HandlerOption func(*Handler)

// WithBroadcaster publishes job completions to b
func WithBroadcaster(b Broadcaster) HandlerOption {
	return func(h *Handler) { h.notifier = b }
}

// WithArchive uploads every successfully generated report
func WithArchive(a *Archive) HandlerOption {
	return func(h *Handler) { h.archive = a }
}

// NewHandler creates a new reports handler
func NewHandler(service *Service, jobs *JobTracker, logger *zap.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		service: service,
		jobs:    jobs,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers reporting routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		reports.POST("/academic", h.generateReport)
		reports.GET("/academic/jobs/:jobId", h.getJob)
		reports.POST("/academic/export", h.exportTable)

		if ws, ok := h.notifier.(http.Handler); ok {
			reports.GET("/ws", gin.WrapH(ws))
		}
	}
}

// generateReport handles POST /api/v1/reports/academic
func (h *Handler) generateReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateFilename(req.Filename); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job := h.jobs.Create(req.Filename)
	h.logger.Info("Report generation queued",
		zap.String("job_id", job.ID.String()),
		zap.String("filename", req.Filename),
		zap.Int("subjects", len(req.Subjects)))

	h.service.GenerateAsync(req, h.completeJob(job.ID, req.Filename))

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// getJob handles GET /api/v1/reports/academic/jobs/:jobId
func (h *Handler) getJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("jobId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job ID"})
		return
	}

	job, err := h.jobs.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, job)
}

// exportTable handles POST /api/v1/reports/academic/export?format=csv|xlsx
func (h *Handler) exportTable(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := ExportFormat(c.DefaultQuery("format", string(ExportFormatCSV)))
	var contentType string
	switch format {
	case ExportFormatCSV:
		contentType = "text/csv"
	case ExportFormatXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q", format)})
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportTable(req, format, &buf); err != nil {
		h.logger.Error("Failed to export report table", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSuffix(filepath.Base(req.Filename), filepath.Ext(req.Filename)) + "." + string(format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// completeJob returns the generation callback for a job: archive, record,
// then notify.
func (h *Handler) completeJob(jobID uuid.UUID, filename string) func(GenerationResult) {
	return func(result GenerationResult) {
		var archiveKey string
		if result.Success && h.archive != nil {
			key, err := h.archiveReport(jobID, filename, result.Path)
			if err != nil {
				h.logger.Warn("Failed to archive report",
					zap.String("job_id", jobID.String()),
					zap.Error(err))
			} else {
				archiveKey = key
			}
		}

		job, err := h.jobs.Complete(jobID, result, archiveKey)
		if err != nil {
			h.logger.Error("Failed to record job result", zap.String("job_id", jobID.String()), zap.Error(err))
			return
		}

		if h.notifier != nil {
			h.notifier.Broadcast("report_generated", map[string]interface{}{
				"job_id":  job.ID.String(),
				"status":  string(job.Status),
				"success": result.Success,
				"message": result.Message,
			})
		}
	}
}

func (h *Handler) archiveReport(jobID uuid.UUID, filename, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	key := path.Join(h.archive.Prefix, jobID.String(), filename)
	if err := h.archive.Client.Upload(ctx, h.archive.Bucket, key, f); err != nil {
		return "", err
	}
	return key, nil
}

// validateFilename rejects names that would escape the save directory
func validateFilename(name string) error {
	if name == "" || name == "." || name == ".." {
		return errors.New("invalid filename")
	}
	if strings.ContainsAny(name, `/\`) {
		return errors.New("filename must not contain path separators")
	}
	return nil
}
