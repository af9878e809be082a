package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
)

// Publisher puts work on the queue the dispatcher reads.
type Publisher struct {
	svc      sqsiface.SQSAPI
	queueURL string
}

func NewPublisher(svc sqsiface.SQSAPI, queueURL string) *Publisher {
	return &Publisher{svc: svc, queueURL: queueURL}
}

func (p *Publisher) Publish(ctx context.Context, work Work) error {
	if !work.IsValid() {
		return fmt.Errorf("refusing to publish invalid work %+v", work)
	}
	body, err := json.Marshal(work)
	if err != nil {
		return err
	}
	_, err = p.svc.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("send %s work for %s: %w", work.Operation, work.SubmissionID, err)
	}
	return nil
}

// SubmissionSaved queues the stored submission for archiving.
func (p *Publisher) SubmissionSaved(ctx context.Context, submissionID string) error {
	return p.Publish(ctx, Work{SubmissionID: submissionID, Operation: OperationArchive})
}
