package v1

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"academic-analytics/report-backend/internal/config"
	"academic-analytics/report-backend/internal/notifications/websocket"
	"academic-analytics/report-backend/internal/reports"
	"academic-analytics/report-backend/internal/reports/export"
	"academic-analytics/report-backend/internal/reports/paths"
	"academic-analytics/report-backend/pkg/storage"
)

// ReportsAPI holds the reports API dependencies
type ReportsAPI struct {
	Handler   *reports.Handler
	Service   *reports.Service
	Jobs      *reports.JobTracker
	WebSocket *websocket.Manager
}

// SetupReportsAPI sets up the reports API with all dependencies
func SetupReportsAPI(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ReportsAPI, error) {
	pdfOptions := export.DefaultPDFOptions()
	pdfOptions.Compress = cfg.Report.Compress

	branding := reports.DefaultBranding()
	branding.ProductLabel = cfg.Report.ProductLabel
	branding.Attribution = cfg.Report.Attribution

	// Create service
	service := reports.NewService(
		paths.NewResolver(),
		export.NewPDFRenderer(pdfOptions),
		logger,
		reports.WithBranding(branding),
	)

	wsManager := websocket.NewManager(logger)
	handlerOpts := []reports.HandlerOption{reports.WithBroadcaster(wsManager)}

	if cfg.Storage.ArchiveEnabled() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3Config{
			Region:          cfg.Storage.S3Region,
			AccessKeyID:     cfg.Storage.S3AccessKey,
			SecretAccessKey: cfg.Storage.S3SecretKey,
			Endpoint:        cfg.Storage.S3Endpoint,
			UsePathStyle:    cfg.Storage.S3UsePathStyle,
		})
		if err != nil {
			wsManager.Close()
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		handlerOpts = append(handlerOpts, reports.WithArchive(&reports.Archive{
			Client: s3Client,
			Bucket: cfg.Storage.S3Bucket,
			Prefix: cfg.Storage.S3Prefix,
		}))
		logger.Info("Report archiving enabled",
			zap.String("bucket", cfg.Storage.S3Bucket),
			zap.String("prefix", cfg.Storage.S3Prefix))
	}

	jobs := reports.NewJobTracker()

	// Create handler
	handler := reports.NewHandler(service, jobs, logger, handlerOpts...)

	return &ReportsAPI{
		Handler:   handler,
		Service:   service,
		Jobs:      jobs,
		WebSocket: wsManager,
	}, nil
}

// RegisterReportsRoutes registers the reports routes on the router group
func RegisterReportsRoutes(router *gin.RouterGroup, api *ReportsAPI) {
	api.Handler.RegisterRoutes(router)
}

// Close releases the websocket hub
func (a *ReportsAPI) Close() {
	a.WebSocket.Close()
}
