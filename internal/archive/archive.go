package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

var ErrNotArchived = errors.New("document not archived")

// Archive keeps exported documents in S3 under <prefix>/<submission id>.pdf.
type Archive struct {
	svc    s3iface.S3API
	bucket string
	prefix string
}

func New(svc s3iface.S3API, bucket, prefix string) *Archive {
	return &Archive{svc: svc, bucket: bucket, prefix: prefix}
}

func (a *Archive) Key(submissionID string) string {
	return path.Join(a.prefix, submissionID+".pdf")
}

// Upload stores the document and returns its key.
func (a *Archive) Upload(ctx context.Context, submissionID string, pdf []byte) (string, error) {
	key := a.Key(submissionID)
	_, err := a.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
		Metadata: map[string]*string{
			"submission-id": aws.String(submissionID),
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", a.bucket, key, err)
	}
	return key, nil
}

// Download returns ErrNotArchived when the object does not exist.
func (a *Archive) Download(ctx context.Context, submissionID string) ([]byte, error) {
	key := a.Key(submissionID)
	output, err := a.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound") {
			return nil, ErrNotArchived
		}
		return nil, fmt.Errorf("download s3://%s/%s: %w", a.bucket, key, err)
	}
	defer output.Body.Close()

	content, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", a.bucket, key, err)
	}
	return content, nil
}
