package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"torchlight-intake/internal/form"
	"torchlight-intake/internal/store"
)

type RecordSource interface {
	FindSubmission(ctx context.Context, id string) (store.SubmissionRecord, error)
}

type DocumentExporter interface {
	Export(ctx context.Context, sub form.Submission) ([]byte, error)
}

type Archiver interface {
	Upload(ctx context.Context, submissionID string, pdf []byte) (string, error)
}

// Worker archives the document of each submission it is handed.
type Worker struct {
	ID       int
	SQS      sqsiface.SQSAPI
	QueueURL string
	Records  RecordSource
	Exporter DocumentExporter
	Archive  Archiver
	// RetryDelay is how long a failed message stays hidden before SQS
	// delivers it again.
	RetryDelay int64
	Logger     *zap.Logger
}

// Run handles messages until ctx is done or the channel is closed.
func (w *Worker) Run(ctx context.Context, messageQueue <-chan *sqs.Message) error {
	w.Logger.Info("starting worker", zap.Int("worker", w.ID))
	for {
		select {
		case <-ctx.Done():
			return nil
		case message, ok := <-messageQueue:
			if !ok {
				return nil
			}
			w.handle(ctx, message)
		}
	}
}

// RunPool runs count workers built by newWorker and waits for all of them.
func RunPool(ctx context.Context, count int, messageQueue <-chan *sqs.Message, newWorker func(id int) *Worker) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 1; i <= count; i++ {
		w := newWorker(i)
		g.Go(func() error {
			return w.Run(ctx, messageQueue)
		})
	}
	return g.Wait()
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func (w *Worker) handle(ctx context.Context, message *sqs.Message) {
	log := w.Logger.With(zap.Int("worker", w.ID), zap.String("message_id", aws.StringValue(message.MessageId)))

	err := w.process(ctx, message)
	var permanent permanentError
	switch {
	case err == nil:
		w.ack(ctx, message, log)
	case errors.As(err, &permanent):
		// retrying cannot help, drop the message
		log.Warn("discarding message", zap.Error(err))
		w.ack(ctx, message, log)
	default:
		log.Error("error processing message, returning it to the queue", zap.Error(err))
		w.release(ctx, message, log)
	}
}

func (w *Worker) process(ctx context.Context, message *sqs.Message) error {
	var work Work
	if err := json.Unmarshal([]byte(aws.StringValue(message.Body)), &work); err != nil {
		return permanentError{fmt.Errorf("decode message: %w", err)}
	}
	if !work.IsValid() {
		return permanentError{fmt.Errorf("invalid work %+v", work)}
	}

	switch work.Operation {
	case OperationArchive:
		return w.archive(ctx, work.SubmissionID)
	}
	return permanentError{fmt.Errorf("unsupported operation %q", work.Operation)}
}

func (w *Worker) archive(ctx context.Context, submissionID string) error {
	rec, err := w.Records.FindSubmission(ctx, submissionID)
	if errors.Is(err, store.ErrNotFound) {
		return permanentError{err}
	}
	if err != nil {
		return fmt.Errorf("load submission %s: %w", submissionID, err)
	}

	sub, err := rec.Submission()
	if err != nil {
		return permanentError{err}
	}
	pdf, err := w.Exporter.Export(ctx, sub)
	if err != nil {
		return fmt.Errorf("export submission %s: %w", submissionID, err)
	}
	key, err := w.Archive.Upload(ctx, submissionID, pdf)
	if err != nil {
		return err
	}
	w.Logger.Info("archived submission", zap.String("submission_id", submissionID), zap.String("key", key))
	return nil
}

func (w *Worker) ack(ctx context.Context, message *sqs.Message, log *zap.Logger) {
	_, err := w.SQS.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(w.QueueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		log.Warn("error deleting message", zap.Error(err))
	}
}

func (w *Worker) release(ctx context.Context, message *sqs.Message, log *zap.Logger) {
	_, err := w.SQS.ChangeMessageVisibilityWithContext(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(w.QueueURL),
		ReceiptHandle:     message.ReceiptHandle,
		VisibilityTimeout: aws.Int64(w.RetryDelay),
	})
	if err != nil {
		log.Warn("error putting message back to the queue", zap.Error(err))
	}
}
