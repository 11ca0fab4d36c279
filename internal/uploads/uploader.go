package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Resource kind hints accepted by Upload. KindAuto sniffs the content type
// from the buffered bytes; the explicit kinds reject mismatched content.
const (
	KindAuto  = "auto"
	KindImage = "image"
	KindVideo = "video"
)

// Result is the single outcome of an upload: a confirmed public URL or an error.
type Result struct {
	URL string
	Err error
}

// objectPutter is the slice of the S3 API the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader transmits buffered media to an S3-compatible object host.
type Uploader struct {
	client    objectPutter
	bucket    string
	publicURL string
}

// New builds an Uploader against the given S3-compatible endpoint.
func New(ctx context.Context, region, endpoint, accessKey, secretKey, bucket, publicURL string) (*Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Uploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

var extByContentType = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/mpeg":      ".mpeg",
	"audio/mpeg":      ".mp3",
	"application/ogg": ".ogg",
}

func storageKey(contentType string) string {
	d := time.Now()
	return fmt.Sprintf("media/%d/%02d/%02d/%s%s",
		d.Year(), int(d.Month()), d.Day(), uuid.New(), extByContentType[contentType])
}

// Upload transmits the fully buffered media to the object host. The returned
// channel delivers exactly one Result and is then closed: either a stable
// public URL or the transmission failure. No retry is performed; the upload
// honors ctx, so an abandoned request aborts the remote call.
func (u *Uploader) Upload(ctx context.Context, data []byte, kind string) <-chan Result {
	out := make(chan Result, 1)

	var once sync.Once
	resolve := func(res Result) {
		once.Do(func() {
			out <- res
			close(out)
		})
	}

	go func() {
		if len(data) == 0 {
			resolve(Result{Err: errors.New("empty media buffer")})
			return
		}

		contentType := http.DetectContentType(data)
		if kind != KindAuto && !strings.HasPrefix(contentType, kind+"/") {
			resolve(Result{Err: fmt.Errorf("content type %s does not match declared kind %s", contentType, kind)})
			return
		}

		key := storageKey(contentType)
		_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(u.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			resolve(Result{Err: fmt.Errorf("object host rejected upload: %w", err)})
			return
		}

		resolve(Result{URL: fmt.Sprintf("%s/%s/%s", u.publicURL, u.bucket, key)})
	}()

	return out
}
