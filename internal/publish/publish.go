// Package publish uploads size reports to S3.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/pkgbuild/internal/errors"
	"github.com/vango-dev/pkgbuild/internal/size"
)

// PutObjectAPI is the part of the S3 client the publisher uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ PutObjectAPI = (*s3.Client)(nil)

// Payload is the JSON document written for one build run.
type Payload struct {
	Commit    string        `json:"commit"`
	CreatedAt time.Time     `json:"createdAt"`
	Reports   []size.Report `json:"reports"`
}

// Publisher writes payloads to a bucket.
type Publisher struct {
	client PutObjectAPI
	bucket string
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Publisher for bucket.
func New(client PutObjectAPI, bucket string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		bucket: bucket,
		logger: logger.With("component", "publish"),
		now:    time.Now,
	}
}

// Publish uploads reports for commit under key.
func (p *Publisher) Publish(ctx context.Context, key, commit string, reports []size.Report) error {
	if reports == nil {
		reports = []size.Report{}
	}
	body, err := json.MarshalIndent(Payload{
		Commit:    commit,
		CreatedAt: p.now().UTC(),
		Reports:   reports,
	}, "", "  ")
	if err != nil {
		return errors.New(errors.CodePublish).Wrap(err)
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"commit": commit,
		},
	})
	if err != nil {
		return errors.New(errors.CodePublish).
			WithDetail("s3://" + p.bucket + "/" + key).
			Wrap(err)
	}

	p.logger.Info("size report published", "bucket", p.bucket, "key", key, "targets", len(reports))
	return nil
}

// NewClient creates an S3 client for region. An empty region falls back to
// AWS_REGION. Credentials come from the standard AWS_* environment
// variables.
func NewClient(region string) *s3.Client {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	return s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	})
}

func envCredentials(ctx context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "EnvironmentVariables",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.New(errors.CodePublish).
			WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return creds, nil
}
