package pdf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"torchlight-intake/internal/form"
	"torchlight-intake/internal/render"
)

var (
	ErrEngineLaunchTimeout = errors.New("pdf engine launch timed out")
	ErrRenderTimeout       = errors.New("pdf render timed out")
	ErrEngineUnavailable   = errors.New("pdf engine unavailable")
)

const (
	DefaultLaunchTimeout = 10 * time.Second
	DefaultRenderTimeout = 30 * time.Second
	DefaultMaxConcurrent = 2
)

// Engine starts rendering instances. Launch may ignore ctx; the exporter
// stops waiting on its own and closes whatever arrives late.
type Engine interface {
	Launch(ctx context.Context) (Instance, error)
}

// Instance is one running rendering engine. Close must release every
// resource the instance holds and is safe to call while PrintPDF runs.
type Instance interface {
	PrintPDF(ctx context.Context, html []byte) ([]byte, error)
	Close() error
}

type Options struct {
	LaunchTimeout time.Duration
	RenderTimeout time.Duration
	MaxConcurrent int
	Logger        *zap.Logger
	// Now stamps the generated documents; defaults to time.Now.
	Now func() time.Time
}

// Exporter turns submissions into PDF documents, one engine instance per
// export.
type Exporter struct {
	engine        Engine
	launchTimeout time.Duration
	renderTimeout time.Duration
	slots         *semaphore.Weighted
	logger        *zap.Logger
	now           func() time.Time
}

func NewExporter(engine Engine, opts Options) *Exporter {
	if opts.LaunchTimeout <= 0 {
		opts.LaunchTimeout = DefaultLaunchTimeout
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = DefaultRenderTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Exporter{
		engine:        engine,
		launchTimeout: opts.LaunchTimeout,
		renderTimeout: opts.RenderTimeout,
		slots:         semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		logger:        opts.Logger,
		now:           opts.Now,
	}
}

// Export renders sub and prints it to PDF.
func (e *Exporter) Export(ctx context.Context, sub form.Submission) ([]byte, error) {
	markup, err := render.HTML(render.Render(sub, e.now()))
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return e.Print(ctx, markup)
}

// Print prints an HTML document. The engine instance is closed before Print
// returns, whatever the outcome.
func (e *Exporter) Print(ctx context.Context, markup []byte) ([]byte, error) {
	inst, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer e.release(inst)

	return e.print(ctx, inst, markup)
}

// Check launches an instance and closes it straight away.
func (e *Exporter) Check(ctx context.Context) error {
	inst, err := e.acquire(ctx)
	if err != nil {
		return err
	}
	e.release(inst)
	return nil
}

type launchResult struct {
	inst Instance
	err  error
}

// acquire takes a concurrency slot and launches an instance. Waiting for the
// slot counts against the launch timeout. On success the caller owns both the
// slot and the instance and hands them back with release.
func (e *Exporter) acquire(parent context.Context) (Instance, error) {
	ctx, cancel := context.WithTimeout(parent, e.launchTimeout)
	defer cancel()

	if err := e.slots.Acquire(ctx, 1); err != nil {
		return nil, waitFailure(parent, ErrEngineLaunchTimeout)
	}

	done := make(chan launchResult)
	abandoned := make(chan struct{})
	go func() {
		inst, err := e.engine.Launch(ctx)
		select {
		case done <- launchResult{inst: inst, err: err}:
		case <-abandoned:
			// nobody is waiting any more: the late instance is ours to close
			if err == nil && inst != nil {
				e.logger.Warn("closing engine instance that launched after the deadline")
				e.closeInstance(inst)
			}
			e.slots.Release(1)
		}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			e.slots.Release(1)
			return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, res.err)
		}
		if res.inst == nil {
			e.slots.Release(1)
			return nil, ErrEngineUnavailable
		}
		return res.inst, nil
	case <-ctx.Done():
		close(abandoned)
		return nil, waitFailure(parent, ErrEngineLaunchTimeout)
	}
}

func (e *Exporter) release(inst Instance) {
	e.closeInstance(inst)
	e.slots.Release(1)
}

func (e *Exporter) closeInstance(inst Instance) {
	if err := inst.Close(); err != nil {
		e.logger.Warn("error closing engine instance", zap.Error(err))
	}
}

type printResult struct {
	pdf []byte
	err error
}

func (e *Exporter) print(parent context.Context, inst Instance, markup []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(parent, e.renderTimeout)
	defer cancel()

	done := make(chan printResult, 1)
	go func() {
		pdf, err := inst.PrintPDF(ctx, markup)
		done <- printResult{pdf: pdf, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if ctx.Err() != nil {
				return nil, waitFailure(parent, ErrRenderTimeout)
			}
			return nil, fmt.Errorf("print document: %w", res.err)
		}
		if len(res.pdf) == 0 {
			return nil, errors.New("print document: engine returned an empty document")
		}
		return res.pdf, nil
	case <-ctx.Done():
		return nil, waitFailure(parent, ErrRenderTimeout)
	}
}

// waitFailure reports why a bounded wait ended. A cancelled caller gets its
// own context error back; any deadline, ours or the caller's, is reported as
// the timeout of the step that was running so callers can classify it.
func waitFailure(parent context.Context, timeout error) error {
	switch err := parent.Err(); {
	case errors.Is(err, context.Canceled):
		return err
	case err != nil:
		return fmt.Errorf("%w: %w", timeout, err)
	}
	return timeout
}
