package s3fs

import (
	"context"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Client implements the BlobClient interface using AWS S3. The container
// argument of every call is the bucket name.
type S3Client struct {
	s3Client *s3.S3
	uploader *s3manager.Uploader
}

// NewS3Client creates an S3-backed blob client. A *session.Session
// satisfies the provider argument.
func NewS3Client(p client.ConfigProvider) *S3Client {
	return &S3Client{
		s3Client: s3.New(p),
		uploader: s3manager.NewUploader(p),
	}
}

// CreateOrReplaceBlob uploads body to key. S3 PutObject responses carry no
// Last-Modified header, so the upload is followed by a metadata probe to
// return the stored blob's authoritative properties.
func (c *S3Client) CreateOrReplaceBlob(ctx context.Context, container, key string, body io.Reader, opts UploadOptions) (BlobProperties, error) {
	input := &s3manager.UploadInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
		Body:   body,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.CacheControl != "" {
		input.CacheControl = aws.String(opts.CacheControl)
	}
	if opts.ContentLanguage != "" {
		input.ContentLanguage = aws.String(opts.ContentLanguage)
	}
	if opts.ContentEncoding != "" {
		input.ContentEncoding = aws.String(opts.ContentEncoding)
	}
	if len(opts.Metadata) > 0 {
		metadata := make(map[string]*string, len(opts.Metadata))
		for k, v := range opts.Metadata {
			metadata[k] = aws.String(v)
		}
		input.Metadata = metadata
	}

	if _, err := c.uploader.UploadWithContext(ctx, input); err != nil {
		return BlobProperties{}, err
	}

	return c.GetBlobMetadata(ctx, container, key)
}

// GetBlob retrieves a blob's properties and content stream from S3.
func (c *S3Client) GetBlob(ctx context.Context, container, key string) (*Blob, error) {
	output, err := c.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}

	return &Blob{
		Properties: BlobProperties{
			LastModified:  aws.TimeValue(output.LastModified),
			ContentType:   aws.StringValue(output.ContentType),
			ContentLength: aws.Int64Value(output.ContentLength),
		},
		Body: output.Body,
	}, nil
}

// GetBlobMetadata probes a blob with HeadObject. An HTTP 404 response maps
// to a *NotFoundError; every other failure is returned as the SDK produced
// it.
func (c *S3Client) GetBlobMetadata(ctx context.Context, container, key string) (BlobProperties, error) {
	output, err := c.s3Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		if reqErr, ok := err.(awserr.RequestFailure); ok && reqErr.StatusCode() == 404 {
			return BlobProperties{}, &NotFoundError{Key: key, Err: err}
		}
		return BlobProperties{}, err
	}

	return BlobProperties{
		LastModified:  aws.TimeValue(output.LastModified),
		ContentType:   aws.StringValue(output.ContentType),
		ContentLength: aws.Int64Value(output.ContentLength),
	}, nil
}

// DeleteBlob removes a blob from S3. S3 reports success for keys that do
// not exist.
func (c *S3Client) DeleteBlob(ctx context.Context, container, key string) error {
	_, err := c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	return err
}

// CopyBlob performs a server-side copy. Only the key portion of the copy
// source is URL-encoded; the bucket/key separator must stay a literal
// slash.
func (c *S3Client) CopyBlob(ctx context.Context, container, destKey, srcContainer, srcKey string) error {
	_, err := c.s3Client.CopyObjectWithContext(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(container),
		Key:        aws.String(destKey),
		CopySource: aws.String(srcContainer + "/" + url.PathEscape(srcKey)),
	})
	return err
}

// ListBlobs lists every key under opts.Prefix, walking all result pages and
// accumulating contents and common prefixes.
func (c *S3Client) ListBlobs(ctx context.Context, container string, opts ListOptions) (*ListResult, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(container),
		Prefix: aws.String(opts.Prefix),
	}
	if opts.Delimiter != "" {
		input.Delimiter = aws.String(opts.Delimiter)
	}

	result := &ListResult{}
	err := c.s3Client.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			result.Blobs = append(result.Blobs, BlobItem{
				Name: aws.StringValue(obj.Key),
				Properties: BlobProperties{
					LastModified:  aws.TimeValue(obj.LastModified),
					ContentLength: aws.Int64Value(obj.Size),
				},
			})
		}
		for _, p := range page.CommonPrefixes {
			result.Prefixes = append(result.Prefixes, aws.StringValue(p.Prefix))
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
