package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"torchlight-intake/internal/form"
	"torchlight-intake/internal/pdf"
	"torchlight-intake/internal/store"
)

type fakeRepo struct {
	mu    sync.Mutex
	saved []form.Submission
	err   error
	hang  bool
}

func (r *fakeRepo) SaveSubmission(ctx context.Context, sub form.Submission) (string, error) {
	if r.hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if r.err != nil {
		return "", r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, sub)
	return "sub-1", nil
}

type fakeExporter struct {
	err   error
	block chan struct{}
	calls int
}

func (e *fakeExporter) Export(_ context.Context, sub form.Submission) ([]byte, error) {
	e.calls++
	if e.block != nil {
		// ignores its context, like a stuck engine
		<-e.block
	}
	if e.err != nil {
		return nil, e.err
	}
	return []byte("%PDF " + sub.Email), nil
}

// stuckEngine launches instances that never finish printing until closed.
type stuckEngine struct{}

func (stuckEngine) Launch(context.Context) (pdf.Instance, error) {
	return &stuckInstance{closed: make(chan struct{})}, nil
}

type stuckInstance struct {
	once   sync.Once
	closed chan struct{}
}

func (i *stuckInstance) PrintPDF(context.Context, []byte) ([]byte, error) {
	<-i.closed
	return nil, errors.New("target closed")
}

func (i *stuckInstance) Close() error {
	i.once.Do(func() { close(i.closed) })
	return nil
}

func newStuckExporter(render time.Duration) *pdf.Exporter {
	return pdf.NewExporter(stuckEngine{}, pdf.Options{
		LaunchTimeout: render / 3,
		RenderTimeout: render,
		Logger:        zap.NewNop(),
	})
}

type fakeNotifier struct {
	ids []string
	err error
}

func (n *fakeNotifier) SubmissionSaved(_ context.Context, id string) error {
	n.ids = append(n.ids, id)
	return n.err
}

func newService(repo Repository, exp Exporter, n Notifier, opts Options) *Service {
	deps := Dependencies{}
	if repo != nil {
		deps.Store = Configured(repo)
	}
	if exp != nil {
		deps.Exporter = Configured(exp)
	}
	if n != nil {
		deps.Notifier = Configured(n)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return NewService(deps, opts)
}

func TestSubmitAllStepsSucceed(t *testing.T) {
	repo, exp, notifier := &fakeRepo{}, &fakeExporter{}, &fakeNotifier{}
	svc := newService(repo, exp, notifier, Options{})

	out := svc.Submit(context.Background(), form.Submission{Email: "  a@b.co "})

	assert.Equal(t, Outcome{
		Success:      true,
		Message:      "Submission received successfully",
		DBSaved:      true,
		PDFGenerated: true,
		PDF:          []byte("%PDF a@b.co"),
		SubmissionID: "sub-1",
	}, out)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "a@b.co", repo.saved[0].Email)
	assert.Equal(t, []string{"sub-1"}, notifier.ids)
}

func TestSubmitExportFailureKeepsSave(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeExporter{err: errors.New("chrome missing")}, nil, Options{})

	out := svc.Submit(context.Background(), form.Submission{Email: "a@b.co"})

	assert.True(t, out.Success)
	assert.True(t, out.DBSaved)
	assert.False(t, out.PDFGenerated)
	assert.Nil(t, out.PDF)
	assert.Equal(t, "Submission received successfully (PDF generation skipped)", out.Message)
	assert.Len(t, repo.saved, 1)
}

func TestSubmitStoreFailureStillExports(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newService(&fakeRepo{err: &store.Error{Kind: store.KindPermission, Op: "insert full", Err: &mysql.MySQLError{Number: 1142}}},
		&fakeExporter{}, notifier, Options{})

	out := svc.Submit(context.Background(), form.Submission{Email: "a@b.co"})

	assert.True(t, out.Success)
	assert.False(t, out.DBSaved)
	assert.True(t, out.PDFGenerated)
	assert.Empty(t, out.SubmissionID)
	assert.Equal(t, "Submission received successfully (Database save skipped)", out.Message)
	assert.Empty(t, notifier.ids, "nothing to archive when nothing was saved")
}

func TestSubmitNothingConfigured(t *testing.T) {
	svc := NewService(Dependencies{
		Store:    Unconfigured[Repository](),
		Exporter: Unconfigured[Exporter](),
		Notifier: Unconfigured[Notifier](),
	}, Options{Logger: zap.NewNop()})

	out := svc.Submit(context.Background(), form.Submission{})

	assert.True(t, out.Success)
	assert.False(t, out.DBSaved)
	assert.False(t, out.PDFGenerated)
	assert.Equal(t, "Submission received successfully (PDF generation skipped) (Database save skipped)", out.Message)
}

func TestSubmitStuckExporterIsBounded(t *testing.T) {
	exp := &fakeExporter{block: make(chan struct{})}
	defer close(exp.block)
	svc := newService(&fakeRepo{}, exp, nil, Options{ExportTimeout: 40 * time.Millisecond})

	start := time.Now()
	out := svc.Submit(context.Background(), form.Submission{Email: "a@b.co"})

	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, out.DBSaved)
	assert.False(t, out.PDFGenerated)
}

func TestSubmitStuckStoreIsBounded(t *testing.T) {
	svc := newService(&fakeRepo{hang: true}, &fakeExporter{}, nil, Options{PersistTimeout: 30 * time.Millisecond})

	start := time.Now()
	out := svc.Submit(context.Background(), form.Submission{Email: "a@b.co"})

	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, out.DBSaved)
	assert.True(t, out.PDFGenerated)
}

func TestSubmitSoftEmailValidation(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := &fakeRepo{}
	svc := newService(repo, nil, nil, Options{Logger: zap.New(core)})

	out := svc.Submit(context.Background(), form.Submission{Email: "not-an-address"})

	assert.True(t, out.DBSaved)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "not-an-address", repo.saved[0].Email)

	warnings := logs.FilterField(zap.String("kind", "validation_soft")).All()
	assert.Len(t, warnings, 1)
}

func TestSubmitWarnsAboutDroppedFields(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := &fakeRepo{}
	svc := newService(repo, nil, nil, Options{Logger: zap.New(core)})

	out := svc.Submit(context.Background(), form.Submission{Email: "a@b.co", Dropped: []string{"scorecard"}})

	assert.True(t, out.DBSaved)
	warnings := logs.FilterMessage("ignored fields that could not be read").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "validation_soft", warnings[0].ContextMap()["kind"])
}

func TestSubmitNotifierFailureIsNotFatal(t *testing.T) {
	svc := newService(&fakeRepo{}, nil, &fakeNotifier{err: errors.New("queue down")}, Options{})

	out := svc.Submit(context.Background(), form.Submission{Email: "a@b.co"})
	assert.True(t, out.Success)
	assert.True(t, out.DBSaved)
}

func TestGeneratePDF(t *testing.T) {
	exp := &fakeExporter{}
	repo := &fakeRepo{}
	svc := newService(repo, exp, nil, Options{})

	doc, err := svc.GeneratePDF(context.Background(), form.Submission{Email: "a@b.co"})
	require.NoError(t, err)
	assert.Equal(t, "%PDF a@b.co", string(doc))
	assert.Empty(t, repo.saved)
}

func TestGeneratePDFBoundedAndDisabled(t *testing.T) {
	exp := &fakeExporter{block: make(chan struct{})}
	defer close(exp.block)
	svc := newService(nil, exp, nil, Options{GenerateTimeout: 30 * time.Millisecond})

	_, err := svc.GeneratePDF(context.Background(), form.Submission{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = newService(nil, nil, nil, Options{}).GeneratePDF(context.Background(), form.Submission{})
	assert.ErrorIs(t, err, ErrExportDisabled)
}

func TestGeneratePDFReportsRenderTimeout(t *testing.T) {
	// the caller's bound equals the exporter's render timeout, as with the defaults
	svc := newService(nil, newStuckExporter(300*time.Millisecond), nil, Options{GenerateTimeout: 300 * time.Millisecond})

	start := time.Now()
	_, err := svc.GeneratePDF(context.Background(), form.Submission{})

	require.Error(t, err)
	assert.ErrorIs(t, err, pdf.ErrRenderTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSubmitLogsExportFailureKind(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	svc := newService(nil, newStuckExporter(300*time.Millisecond), nil, Options{
		ExportTimeout: 300 * time.Millisecond,
		Logger:        zap.New(core),
	})

	out := svc.Submit(context.Background(), form.Submission{Email: "a@b.co"})

	assert.False(t, out.PDFGenerated)
	failures := logs.FilterMessage("failed to generate pdf").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "render_timeout", failures[0].ContextMap()["kind"])
}

func TestExportKind(t *testing.T) {
	assert.Equal(t, "engine_launch_timeout", exportKind(fmt.Errorf("%w: %w", pdf.ErrEngineLaunchTimeout, context.DeadlineExceeded)))
	assert.Equal(t, "render_timeout", exportKind(pdf.ErrRenderTimeout))
	assert.Equal(t, "engine_unavailable", exportKind(fmt.Errorf("%w: no binary", pdf.ErrEngineUnavailable)))
	assert.Equal(t, "timeout", exportKind(fmt.Errorf("gave up: %w", context.DeadlineExceeded)))
	assert.Equal(t, "canceled", exportKind(context.Canceled))
	assert.Equal(t, "unknown", exportKind(errors.New("boom")))
}

func TestAvailability(t *testing.T) {
	var zero Availability[Repository]
	assert.False(t, zero.Configured())

	repo := &fakeRepo{}
	a := Configured[Repository](repo)
	got, ok := a.Get()
	assert.True(t, ok)
	assert.Same(t, repo, got)
}
