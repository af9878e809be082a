package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"torchlight-intake/config"
	"torchlight-intake/internal/form"
	"torchlight-intake/internal/store"
)

type fakeSQS struct {
	sqsiface.SQSAPI

	mu         sync.Mutex
	batches    [][]*sqs.Message
	receiveErr error
	sent       []*sqs.SendMessageInput
	deleted    []string
	released   []string
}

func (f *fakeSQS) ReceiveMessageWithContext(ctx aws.Context, in *sqs.ReceiveMessageInput, _ ...request.Option) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	if f.receiveErr != nil {
		err := f.receiveErr
		f.receiveErr = nil
		f.mu.Unlock()
		return nil, err
	}
	if len(f.batches) > 0 {
		batch := f.batches[0]
		f.batches = f.batches[1:]
		f.mu.Unlock()
		return &sqs.ReceiveMessageOutput{Messages: batch}, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeSQS) SendMessageWithContext(_ aws.Context, in *sqs.SendMessageInput, _ ...request.Option) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func (f *fakeSQS) DeleteMessageWithContext(_ aws.Context, in *sqs.DeleteMessageInput, _ ...request.Option) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.StringValue(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) ChangeMessageVisibilityWithContext(_ aws.Context, in *sqs.ChangeMessageVisibilityInput, _ ...request.Option) (*sqs.ChangeMessageVisibilityOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, aws.StringValue(in.ReceiptHandle))
	return &sqs.ChangeMessageVisibilityOutput{}, nil
}

func (f *fakeSQS) snapshot() (deleted, released []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...), append([]string(nil), f.released...)
}

type fakeRecords map[string]store.SubmissionRecord

func (f fakeRecords) FindSubmission(_ context.Context, id string) (store.SubmissionRecord, error) {
	rec, ok := f[id]
	if !ok {
		return store.SubmissionRecord{}, store.ErrNotFound
	}
	return rec, nil
}

type fakeExporter struct{ err error }

func (f fakeExporter) Export(_ context.Context, sub form.Submission) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF " + sub.Email), nil
}

type fakeArchive struct {
	mu       sync.Mutex
	uploaded map[string]string
}

func (f *fakeArchive) Upload(_ context.Context, id string, pdf []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded[id] = string(pdf)
	return "submissions/" + id + ".pdf", nil
}

func message(receipt, body string) *sqs.Message {
	return &sqs.Message{MessageId: aws.String(receipt), ReceiptHandle: aws.String(receipt), Body: aws.String(body)}
}

func newWorker(svc *fakeSQS, exp DocumentExporter, arch *fakeArchive) *Worker {
	return &Worker{
		ID:       1,
		SQS:      svc,
		QueueURL: "https://sqs.test/queue",
		Records: fakeRecords{
			"sub-1": {ID: "sub-1", Email: "a@b.co", Interests: "Vertical SaaS"},
		},
		Exporter:   exp,
		Archive:    arch,
		RetryDelay: 30,
		Logger:     zap.NewNop(),
	}
}

func TestWorkIsValid(t *testing.T) {
	assert.True(t, (&Work{SubmissionID: "x", Operation: OperationArchive}).IsValid())
	assert.False(t, (&Work{Operation: OperationArchive}).IsValid())
	assert.False(t, (&Work{SubmissionID: "x", Operation: "parse"}).IsValid())
}

func TestPublisherSubmissionSaved(t *testing.T) {
	svc := &fakeSQS{}
	p := NewPublisher(svc, "https://sqs.test/queue")

	require.NoError(t, p.SubmissionSaved(context.Background(), "sub-1"))
	require.Len(t, svc.sent, 1)
	assert.Equal(t, "https://sqs.test/queue", aws.StringValue(svc.sent[0].QueueUrl))

	var work Work
	require.NoError(t, json.Unmarshal([]byte(aws.StringValue(svc.sent[0].MessageBody)), &work))
	assert.Equal(t, Work{SubmissionID: "sub-1", Operation: OperationArchive}, work)

	assert.Error(t, p.Publish(context.Background(), Work{}))
}

func TestWorkerArchivesAndDeletes(t *testing.T) {
	svc := &fakeSQS{}
	arch := &fakeArchive{uploaded: map[string]string{}}
	w := newWorker(svc, fakeExporter{}, arch)

	w.handle(context.Background(), message("r-1", `{"submissionId":"sub-1","operation":"archive"}`))

	assert.Equal(t, "%PDF a@b.co", arch.uploaded["sub-1"])
	deleted, released := svc.snapshot()
	assert.Equal(t, []string{"r-1"}, deleted)
	assert.Empty(t, released)
}

func TestWorkerReleasesOnTransientFailure(t *testing.T) {
	svc := &fakeSQS{}
	arch := &fakeArchive{uploaded: map[string]string{}}
	w := newWorker(svc, fakeExporter{err: errors.New("engine launch timed out")}, arch)

	w.handle(context.Background(), message("r-1", `{"submissionId":"sub-1","operation":"archive"}`))

	assert.Empty(t, arch.uploaded)
	deleted, released := svc.snapshot()
	assert.Empty(t, deleted)
	assert.Equal(t, []string{"r-1"}, released)
}

func TestWorkerDropsPoisonMessages(t *testing.T) {
	svc := &fakeSQS{}
	w := newWorker(svc, fakeExporter{}, &fakeArchive{uploaded: map[string]string{}})

	w.handle(context.Background(), message("bad-json", `{not json`))
	w.handle(context.Background(), message("bad-op", `{"submissionId":"sub-1","operation":"parse"}`))
	w.handle(context.Background(), message("missing", `{"submissionId":"gone","operation":"archive"}`))

	deleted, released := svc.snapshot()
	assert.Equal(t, []string{"bad-json", "bad-op", "missing"}, deleted)
	assert.Empty(t, released)
}

func TestDispatcherAndPool(t *testing.T) {
	orig := receiveBackoff
	receiveBackoff = time.Millisecond
	t.Cleanup(func() { receiveBackoff = orig })
	svc := &fakeSQS{
		receiveErr: errors.New("throttled"),
		batches: [][]*sqs.Message{{
			message("r-1", `{"submissionId":"sub-1","operation":"archive"}`),
			message("r-2", `{"submissionId":"gone","operation":"archive"}`),
		}},
	}
	arch := &fakeArchive{uploaded: map[string]string{}}

	ctx, cancel := context.WithCancel(context.Background())
	messageQueue := make(chan *sqs.Message, 10)
	dispatched := make(chan struct{})
	go func() {
		Dispatcher(ctx, svc, config.QueueConfig{QueueURL: "https://sqs.test/queue", MaxMessages: 10}, messageQueue, zap.NewNop())
		close(dispatched)
	}()

	poolDone := make(chan error, 1)
	go func() {
		poolDone <- RunPool(ctx, 2, messageQueue, func(id int) *Worker {
			w := newWorker(svc, fakeExporter{}, arch)
			w.ID = id
			return w
		})
	}()

	assert.Eventually(t, func() bool {
		deleted, _ := svc.snapshot()
		return len(deleted) == 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-dispatched
	require.NoError(t, <-poolDone)

	arch.mu.Lock()
	defer arch.mu.Unlock()
	assert.Equal(t, map[string]string{"sub-1": "%PDF a@b.co"}, arch.uploaded)
}
