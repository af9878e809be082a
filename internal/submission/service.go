package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"torchlight-intake/internal/form"
	"torchlight-intake/internal/logging"
	"torchlight-intake/internal/parsing"
	"torchlight-intake/internal/pdf"
	"torchlight-intake/internal/store"
)

const (
	DefaultPersistTimeout  = 10 * time.Second
	DefaultExportTimeout   = 30 * time.Second
	DefaultGenerateTimeout = 30 * time.Second

	messageReceived   = "Submission received successfully"
	suffixPDFSkipped  = " (PDF generation skipped)"
	suffixSaveSkipped = " (Database save skipped)"
)

// ErrExportDisabled is returned by GeneratePDF when no exporter is configured.
var ErrExportDisabled = errors.New("pdf export is not configured")

type Repository interface {
	SaveSubmission(ctx context.Context, sub form.Submission) (string, error)
}

type Exporter interface {
	Export(ctx context.Context, sub form.Submission) ([]byte, error)
}

// Notifier is told about every stored submission.
type Notifier interface {
	SubmissionSaved(ctx context.Context, submissionID string) error
}

type Dependencies struct {
	Store    Availability[Repository]
	Exporter Availability[Exporter]
	Notifier Availability[Notifier]
}

type Options struct {
	PersistTimeout  time.Duration
	ExportTimeout   time.Duration
	GenerateTimeout time.Duration
	Logger          *zap.Logger
}

// Outcome is what a submission produced. Success is true for every
// submission that was decoded, whichever steps failed.
type Outcome struct {
	Success      bool
	Message      string
	DBSaved      bool
	PDFGenerated bool
	PDF          []byte
	SubmissionID string
}

type Service struct {
	deps            Dependencies
	persistTimeout  time.Duration
	exportTimeout   time.Duration
	generateTimeout time.Duration
	logger          *zap.Logger
}

func NewService(deps Dependencies, opts Options) *Service {
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = DefaultPersistTimeout
	}
	if opts.ExportTimeout <= 0 {
		opts.ExportTimeout = DefaultExportTimeout
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = DefaultGenerateTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		deps:            deps,
		persistTimeout:  opts.PersistTimeout,
		exportTimeout:   opts.ExportTimeout,
		generateTimeout: opts.GenerateTimeout,
		logger:          opts.Logger,
	}
}

// Submit stores and exports a decoded submission. Each step is best effort:
// a failed or unconfigured step is reported in the outcome and never stops
// the steps after it.
func (s *Service) Submit(ctx context.Context, sub form.Submission) Outcome {
	log := s.logger.With(logging.Email("email", sub.Email))
	log.Info("submission received", zap.String("stage", "received"))

	email, ok := parsing.NormalizeEmail(sub.Email)
	if email != "" && !ok {
		log.Warn("email does not look like an address, keeping it as given",
			zap.String("stage", "validating"),
			zap.String("kind", "validation_soft"))
	}
	sub.Email = email
	if len(sub.Dropped) > 0 {
		log.Warn("ignored fields that could not be read",
			zap.String("stage", "validating"),
			zap.String("kind", "validation_soft"),
			zap.Strings("fields", sub.Dropped))
	}

	out := Outcome{Success: true}

	if repo, ok := s.deps.Store.Get(); ok {
		id, err := bounded(ctx, s.persistTimeout, func(ctx context.Context) (string, error) {
			return repo.SaveSubmission(ctx, sub)
		})
		if err != nil {
			log.Error("failed to save submission",
				zap.String("stage", "persisting"),
				zap.String("kind", store.KindOf(err).String()),
				zap.Error(err))
		} else {
			out.DBSaved = true
			out.SubmissionID = id
			log.Info("submission saved", zap.String("stage", "persisting"), zap.String("submission_id", id))
		}
	} else {
		log.Info("database not configured, skipping save", zap.String("stage", "persisting"))
	}

	if exp, ok := s.deps.Exporter.Get(); ok {
		doc, err := bounded(ctx, s.exportTimeout, func(ctx context.Context) ([]byte, error) {
			return exp.Export(ctx, sub)
		})
		if err != nil {
			log.Error("failed to generate pdf",
				zap.String("stage", "exporting"),
				zap.String("kind", exportKind(err)),
				zap.Error(err))
		} else {
			out.PDFGenerated = true
			out.PDF = doc
			log.Info("pdf generated", zap.String("stage", "exporting"), zap.Int("bytes", len(doc)))
		}
	} else {
		log.Info("pdf export not configured, skipping", zap.String("stage", "exporting"))
	}

	if n, ok := s.deps.Notifier.Get(); ok && out.DBSaved {
		if err := n.SubmissionSaved(ctx, out.SubmissionID); err != nil {
			log.Warn("failed to queue submission for archiving",
				zap.String("stage", "notifying"),
				zap.String("submission_id", out.SubmissionID),
				zap.Error(err))
		}
	}

	out.Message = messageReceived
	if !out.PDFGenerated {
		out.Message += suffixPDFSkipped
	}
	if !out.DBSaved {
		out.Message += suffixSaveSkipped
	}
	log.Info("submission handled",
		zap.String("stage", "responding"),
		zap.Bool("db_saved", out.DBSaved),
		zap.Bool("pdf_generated", out.PDFGenerated))
	return out
}

// GeneratePDF only exports; nothing is stored.
func (s *Service) GeneratePDF(ctx context.Context, sub form.Submission) ([]byte, error) {
	exp, ok := s.deps.Exporter.Get()
	if !ok {
		return nil, ErrExportDisabled
	}
	return bounded(ctx, s.generateTimeout, func(ctx context.Context) ([]byte, error) {
		return exp.Export(ctx, sub)
	})
}

// settleGrace is how long bounded keeps listening after its deadline for fn
// to report the deadline itself.
const settleGrace = 100 * time.Millisecond

// bounded runs fn with a deadline and stops waiting shortly after the deadline
// passes, even if fn does not return. A fn that honours ctx gets to return its
// own, more specific, error.
func bounded[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
	}

	grace := time.NewTimer(settleGrace)
	defer grace.Stop()
	select {
	case r := <-done:
		return r.value, r.err
	case <-grace.C:
		var zero T
		return zero, fmt.Errorf("gave up after %s: %w", timeout, ctx.Err())
	}
}

// exportKind names the class of an export failure for logs.
func exportKind(err error) string {
	switch {
	case errors.Is(err, pdf.ErrEngineLaunchTimeout):
		return "engine_launch_timeout"
	case errors.Is(err, pdf.ErrRenderTimeout):
		return "render_timeout"
	case errors.Is(err, pdf.ErrEngineUnavailable):
		return "engine_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "unknown"
}
