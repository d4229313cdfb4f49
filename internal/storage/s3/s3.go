package s3

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"

	"vidtube/internal/pkg/ffprobe"
	"vidtube/internal/storage"
)

// Client stores media in an S3 bucket. Objects are keyed
// <kind>/<uuid><ext> so the key alone is enough for later deletion.
type Client struct {
	uploader *s3manager.Uploader
	s3       *awss3.S3
	bucket   string
}

func New(region, bucket string) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session failed: %w", err)
	}

	return &Client{
		uploader: s3manager.NewUploader(sess),
		s3:       awss3.New(sess),
		bucket:   bucket,
	}, nil
}

func (c *Client) Upload(ctx context.Context, localPath string, kind storage.ResourceKind) (*storage.UploadResult, error) {
	// The staged file is released no matter how the upload goes.
	defer os.Remove(localPath)

	var duration float64
	if kind == storage.KindVideo {
		probed, err := ffprobe.Duration(localPath)
		if err != nil {
			return nil, fmt.Errorf("probe media duration failed: %w", err)
		}
		duration = probed
	}

	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open staged file failed: %w", err)
	}
	defer file.Close()

	ext := filepath.Ext(localPath)
	key := fmt.Sprintf("%s/%s%s", kind, uuid.New().String(), ext)
	contentType := mime.TypeByExtension(ext)

	result, err := c.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload to s3 failed: %w", err)
	}

	return &storage.UploadResult{
		URL:      result.Location,
		ObjectID: key,
		Duration: duration,
	}, nil
}

func (c *Client) Delete(ctx context.Context, objectID string, kind storage.ResourceKind) error {
	_, err := c.s3.DeleteObjectWithContext(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectID),
	})
	if err != nil {
		return fmt.Errorf("delete s3 object %s failed: %w", objectID, err)
	}
	return nil
}
