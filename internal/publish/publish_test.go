package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/pkgbuild/internal/errors"
	"github.com/vango-dev/pkgbuild/internal/size"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestPublish(t *testing.T) {
	client := &fakeS3{}
	p := New(client, "reports", nil)
	p.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	reports := []size.Report{{Target: "cli", Artifact: "cli.esm-browser.prod.js", Raw: 10240, Gzip: 4096, Brotli: 3500}}
	if err := p.Publish(context.Background(), "pkgbuild/abc1234.json", "abc1234", reports); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	if got := aws.ToString(client.input.Bucket); got != "reports" {
		t.Errorf("Bucket = %q, want reports", got)
	}
	if got := aws.ToString(client.input.Key); got != "pkgbuild/abc1234.json" {
		t.Errorf("Key = %q", got)
	}
	if got := aws.ToString(client.input.ContentType); got != "application/json" {
		t.Errorf("ContentType = %q", got)
	}

	var payload Payload
	if err := json.Unmarshal(client.body, &payload); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	want := Payload{
		Commit:    "abc1234",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Reports:   reports,
	}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestPublish_EmptyReports(t *testing.T) {
	client := &fakeS3{}
	if err := New(client, "b", nil).Publish(context.Background(), "k", "c", nil); err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	json.Unmarshal(client.body, &raw)
	if reports, ok := raw["reports"].([]any); !ok || len(reports) != 0 {
		t.Errorf("reports = %v, want empty array", raw["reports"])
	}
}

func TestPublish_Failure(t *testing.T) {
	client := &fakeS3{err: fmt.Errorf("access denied")}
	err := New(client, "b", nil).Publish(context.Background(), "k", "c", nil)

	if !errors.Is(err, errors.ErrPublish) {
		t.Fatalf("error = %v, want E230", err)
	}
	var e *errors.Error
	errors.As(err, &e)
	if e.Detail != "s3://b/k" {
		t.Errorf("Detail = %q, want s3://b/k", e.Detail)
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	if _, err := envCredentials(context.Background()); !errors.Is(err, errors.ErrPublish) {
		t.Errorf("error = %v, want E230 without credentials", err)
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_SESSION_TOKEN", "token")
	creds, err := envCredentials(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "AKID" || creds.SecretAccessKey != "secret" || creds.SessionToken != "token" {
		t.Errorf("creds = %+v", creds)
	}
}

func TestNewClient_RegionFromEnv(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")
	if got := NewClient("").Options().Region; got != "eu-west-1" {
		t.Errorf("Region = %q, want eu-west-1", got)
	}
	if got := NewClient("us-east-2").Options().Region; got != "us-east-2" {
		t.Errorf("Region = %q, want us-east-2", got)
	}
}
