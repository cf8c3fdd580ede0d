// Package publish uploads finished reports to S3-compatible storage.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/titpetric/verdict/model"
)

// Environment variables read by FromEnv.
const (
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvEndpoint        = "VERDICT_S3_ENDPOINT"
	EnvInsecure        = "VERDICT_S3_INSECURE"
)

// DefaultEndpoint is used when no endpoint is configured.
const DefaultEndpoint = "s3.amazonaws.com"

// ObjectPutter is the subset of the minio client used for uploads.
type ObjectPutter interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Target is a parsed s3://bucket/prefix destination.
type Target struct {
	Bucket string
	Prefix string
}

// ParseTarget parses an s3://bucket[/prefix] URL.
func ParseTarget(raw string) (Target, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "s3://")
	if !ok {
		return Target{}, model.Errorf(model.ErrCodeConfig, "publish target must start with s3://, got %q", raw)
	}

	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Target{}, model.Errorf(model.ErrCodeConfig, "publish target %q has no bucket", raw)
	}
	return Target{
		Bucket: bucket,
		Prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Object returns the object key for a local file name.
func (t Target) Object(name string) string {
	return path.Join(t.Prefix, filepath.Base(name))
}

// String returns the target as an s3:// URL.
func (t Target) String() string {
	if t.Prefix == "" {
		return "s3://" + t.Bucket
	}
	return "s3://" + t.Bucket + "/" + t.Prefix
}

// Options hold the connection settings for NewClient.
type Options struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Insecure        bool
}

// FromEnv reads connection settings from the environment.
func FromEnv() Options {
	opts := Options{
		Endpoint:        os.Getenv(EnvEndpoint),
		AccessKeyID:     os.Getenv(EnvAccessKeyID),
		SecretAccessKey: os.Getenv(EnvSecretAccessKey),
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvInsecure)); err == nil {
		opts.Insecure = v
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	return opts
}

// NewClient creates a minio client. An http:// or https:// scheme on the
// endpoint overrides Insecure.
func NewClient(opts Options) (*minio.Client, error) {
	endpoint := opts.Endpoint
	secure := !opts.Insecure
	if after, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint, secure = after, false
	} else if after, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint, secure = after, true
	}
	endpoint = strings.TrimSuffix(endpoint, "/")
	if endpoint == "" {
		return nil, model.NewError(model.ErrCodeConfig, "publish endpoint cannot be empty")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, model.WrapError(model.ErrCodeConfig, "cannot create storage client", err).WithContext("endpoint", endpoint)
	}
	return client, nil
}

// Publisher uploads files to a target.
type Publisher struct {
	client ObjectPutter
	target Target
	log    *slog.Logger
}

// New creates a publisher uploading through client.
func New(client ObjectPutter, target Target, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		client: client,
		target: target,
		log:    log,
	}
}

// Upload uploads each file under the target prefix and returns the
// object URLs in order. It stops at the first failure.
func (p *Publisher) Upload(ctx context.Context, files ...string) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		if file == "" {
			continue
		}
		object := p.target.Object(file)
		opts := minio.PutObjectOptions{
			ContentType: contentType(file),
		}

		info, err := p.client.FPutObject(ctx, p.target.Bucket, object, file, opts)
		if err != nil {
			return urls, fmt.Errorf("upload %s to %s: %w", file, p.target, err)
		}

		url := "s3://" + p.target.Bucket + "/" + object
		p.log.Info("published",
			slog.String("file", file),
			slog.String("url", url),
			slog.Int64("size", info.Size),
		)
		urls = append(urls, url)
	}
	return urls, nil
}

func contentType(file string) string {
	if ct := mime.TypeByExtension(filepath.Ext(file)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
