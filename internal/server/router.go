package server

import (
	"context"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"torchlight-intake/internal/store"
	"torchlight-intake/internal/submission"
)

// Records is the read side of the store.
type Records interface {
	ListSubmissions(ctx context.Context, limit int) ([]store.SubmissionRecord, error)
	FindSubmission(ctx context.Context, id string) (store.SubmissionRecord, error)
	Ping(ctx context.Context) error
}

type DocumentArchive interface {
	Download(ctx context.Context, submissionID string) ([]byte, error)
}

type RouterConfig struct {
	Service *submission.Service
	Records submission.Availability[Records]
	Archive submission.Availability[DocumentArchive]
	// PDFEngineHealthy is kept current by the engine health check; nil when
	// export is disabled.
	PDFEngineHealthy *atomic.Bool
	MaxBodyBytes     int64
	Logger           *zap.Logger
}

const defaultMaxBodyBytes = 10 << 20

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	h := &handlers{cfg: cfg, logger: cfg.Logger}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(cfg.Logger), CORS())

	api := router.Group("/api")
	{
		api.GET("/health", h.health)

		api.POST("/submit", h.submit)
		api.OPTIONS("/submit", preflight)
		api.POST("/generate-pdf", h.generatePDF)
		api.OPTIONS("/generate-pdf", preflight)

		api.GET("/submissions", h.listSubmissions)
		api.GET("/submissions/:id", h.getSubmission)
		api.GET("/submissions/:id/pdf", h.submissionPDF)
		api.GET("/reports/submissions.xlsx", h.submissionsWorkbook)
	}
	return router
}
