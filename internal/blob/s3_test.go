package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picshare/readpath/internal/common"
	"github.com/picshare/readpath/internal/config"
)

func newS3Fixture(t *testing.T) *S3Source {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ImageSource = config.ImageSourceS3
	cfg.S3Bucket = "picshare"
	cfg.S3BaseEndpoint = "http://127.0.0.1:9000"
	cfg.S3AccessKey = "minioadmin"
	cfg.S3SecretKey = "minioadmin"

	src, err := NewS3Source(context.Background(), cfg)
	require.NoError(t, err)
	return src
}

func TestNewS3Source_ConfigLoadError(t *testing.T) {
	orig := loadDefaultAWSConfig
	defer func() { loadDefaultAWSConfig = orig }()
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	_, err := NewS3Source(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error from config load")
	}
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "posts/42", objectKey(42))
}

func TestS3Fetch_ReturnsPayloadAndContentType(t *testing.T) {
	src := newS3Fixture(t)

	orig := getObject
	defer func() { getObject = orig }()
	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		assert.Equal(t, "picshare", aws.ToString(in.Bucket))
		assert.Equal(t, "posts/7", aws.ToString(in.Key))
		return &s3.GetObjectOutput{
			Body:        io.NopCloser(bytes.NewReader([]byte{0xff, 0xd8})),
			ContentType: aws.String("image/jpeg"),
		}, nil
	}

	img, err := src.Fetch(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.Mime)
	assert.Equal(t, []byte{0xff, 0xd8}, img.Data)
}

func TestS3Fetch_MissingObject(t *testing.T) {
	src := newS3Fixture(t)

	orig := getObject
	defer func() { getObject = orig }()
	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return nil, &types.NoSuchKey{}
	}

	_, err := src.Fetch(context.Background(), 7)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestS3Fetch_TransportError(t *testing.T) {
	src := newS3Fixture(t)

	orig := getObject
	defer func() { getObject = orig }()
	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return nil, errors.New("connection refused")
	}

	_, err := src.Fetch(context.Background(), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNotFound)
}
