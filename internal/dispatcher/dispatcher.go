package dispatcher

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"go.uber.org/zap"

	"torchlight-intake/config"
)

var receiveBackoff = 5 * time.Second

// Dispatcher long-polls the queue and feeds messages to the workers until ctx
// is done.
func Dispatcher(ctx context.Context, svc sqsiface.SQSAPI, queue config.QueueConfig, messageQueue chan<- *sqs.Message, logger *zap.Logger) {
	logger.Info("starting dispatcher", zap.String("queue_url", queue.QueueURL))
	for {
		if ctx.Err() != nil {
			return
		}
		result, err := svc.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queue.QueueURL),
			MaxNumberOfMessages: aws.Int64(queue.MaxMessages),
			VisibilityTimeout:   aws.Int64(queue.VisibilityTimeout),
			WaitTimeSeconds:     aws.Int64(queue.PollingWaitTime),
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("error receiving messages", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(receiveBackoff):
			}
			continue
		}

		for _, message := range result.Messages {
			select {
			case messageQueue <- message:
			case <-ctx.Done():
				return
			}
		}
	}
}
