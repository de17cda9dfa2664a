package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/narcan-map/internal/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultRegion = "us-east-1"

// Options configures the S3-compatible endpoint holding the case CSV.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	Bucket    string
	Key       string
}

// objectGetter is the subset of *minio.Client the loader needs.
type objectGetter interface {
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// Loader reads the case CSV from an object store.
// It implements domain.Loader.
type Loader struct {
	client objectGetter
	bucket string
	key    string
}

// NewLoader connects a MinIO client to the configured endpoint.
func NewLoader(opts Options) (*Loader, error) {
	if opts.Endpoint == "" || opts.Bucket == "" || opts.Key == "" {
		return nil, fmt.Errorf("s3 loader: endpoint, bucket and key are required")
	}
	region := opts.Region
	if region == "" {
		region = defaultRegion
	}
	// A fixed region skips the bucket-location lookup on first request.
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return newLoader(client, opts.Bucket, opts.Key), nil
}

func newLoader(client objectGetter, bucket, key string) *Loader {
	return &Loader{
		client: client,
		bucket: bucket,
		key:    strings.TrimPrefix(key, "/"),
	}
}

// Resource identifies the object as s3://bucket/key.
func (l *Loader) Resource() string {
	return "s3://" + l.bucket + "/" + l.key
}

// Load streams the object body into memory.
func (l *Loader) Load(ctx context.Context) (string, error) {
	obj, err := l.client.GetObject(ctx, l.bucket, l.key, minio.GetObjectOptions{})
	if err != nil {
		return "", domain.LoadError(l.Resource(), err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing key surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		if code := minio.ToErrorResponse(err).Code; code != "" {
			return "", domain.LoadError(l.Resource(), fmt.Errorf("%s: %w", code, err))
		}
		return "", domain.LoadError(l.Resource(), err)
	}
	return string(data), nil
}
