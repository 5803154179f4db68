package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/example/snipt/internal/history"
)

// DefaultLinkTTL is how long a shared link stays valid.
const DefaultLinkTTL = 7 * 24 * time.Hour

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type objectPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Recorder keeps a log of finished uploads.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// UploadConfig configures the cloud upload target.
type UploadConfig struct {
	Bucket   string
	Region   string
	Endpoint string // Optional S3 compatible endpoint
	User     string // Key prefix identifying the uploader
	LinkTTL  time.Duration
}

// Uploader stores captures in an S3 compatible bucket under "<user>/" and
// returns a presigned download link.
type Uploader struct {
	client    objectPutter
	presigner objectPresigner
	creds     aws.CredentialsProvider
	bucket    string
	user      string
	ttl       time.Duration

	// History, when set, receives a row per upload. Failures are logged only.
	History Recorder
	Logger  *log.Logger
}

// NewUploader builds an uploader from the default AWS credential chain.
func NewUploader(ctx context.Context, cfg UploadConfig) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("upload: no bucket configured")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("upload: load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	u := newUploader(client, s3.NewPresignClient(client), cfg)
	u.creds = awsCfg.Credentials
	return u, nil
}

func newUploader(client objectPutter, presigner objectPresigner, cfg UploadConfig) *Uploader {
	ttl := cfg.LinkTTL
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	return &Uploader{
		client:    client,
		presigner: presigner,
		bucket:    cfg.Bucket,
		user:      cfg.User,
		ttl:       ttl,
	}
}

func (u *Uploader) logf(format string, args ...interface{}) {
	if u.Logger != nil {
		u.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Export implements Target. It fails with ErrAuthRequired when no user or
// credentials are available and with *NetworkError on transport failures.
func (u *Uploader) Export(ctx context.Context, p Payload) (Result, error) {
	if u.user == "" {
		return Result{}, ErrAuthRequired
	}
	if u.creds != nil {
		if _, err := u.creds.Retrieve(ctx); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrAuthRequired, err)
		}
	}
	key := path.Join(u.user, p.Filename)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(p.PNG),
		ContentType:  aws.String("image/png"),
		CacheControl: aws.String("max-age=3600"),
		IfNoneMatch:  aws.String("*"),
	})
	if err != nil {
		return Result{}, classify(ctx, "upload", err)
	}

	req, err := u.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(u.ttl))
	if err != nil {
		return Result{}, classify(ctx, "sign link", err)
	}

	if u.History != nil {
		entry := history.Entry{Filename: p.Filename, Path: key, URL: req.URL, Size: int64(len(p.PNG))}
		if err := u.History.Record(ctx, entry); err != nil {
			u.logf("upload: record history: %v", err)
		}
	}
	return Result{Action: ActionUpload, Path: key, URL: req.URL}, nil
}

var authErrorCodes = map[string]bool{
	"AccessDenied":          true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"ExpiredToken":          true,
	"InvalidToken":          true,
}

// classify maps SDK errors onto ErrAuthRequired and *NetworkError.
func classify(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if authErrorCodes[apiErr.ErrorCode()] {
			return fmt.Errorf("%w: %s", ErrAuthRequired, apiErr.ErrorMessage())
		}
		return fmt.Errorf("%s: %s: %s", op, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return &NetworkError{Op: op, Err: err}
}
