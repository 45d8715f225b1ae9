package storage

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dustin/go-humanize"

	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/internal/domain/post"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

const audioContentType = "audio/mpeg"

// S3 stores narrated post audio and hands out presigned links to it
type S3 struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	presignTTL time.Duration
	log        *logger.Logger
}

// NewS3 builds a client from the default AWS credential chain, or from the
// static keys when both are configured. A custom endpoint switches to
// path-style addressing for S3-compatible stores.
func NewS3(ctx context.Context, cfg config.StorageConfig) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &S3{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		presignTTL: ttl,
		log:        logger.Get().With("component", "s3"),
	}, nil
}

// AudioKey is the object key of a post's narration: tts/{authorKey}/{date}.mp3
func AudioKey(authorKey string, date int64) string {
	return fmt.Sprintf("tts/%s/%d.mp3", authorKey, date)
}

// UploadAudio stores the narration of a post and returns its key
func (s *S3) UploadAudio(ctx context.Context, authorKey string, p post.Post, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", errors.Wrap(errors.ErrInvalidInput, "audio is empty")
	}

	key := AudioKey(authorKey, p.Date)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(audio),
		ContentType:          aws.String(audioContentType),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
		Metadata: map[string]string{
			"author": p.Author,
			"date":   strconv.FormatInt(p.Date, 10),
		},
	})
	if err != nil {
		return "", errors.Wrapf(errors.ErrExternal, "failed to upload %s: %v", key, err)
	}

	s.log.Infof("uploaded %s (%s)", key, humanize.Bytes(uint64(len(audio))))
	return key, nil
}

// PresignGet returns a temporary download URL for key
func (s *S3) PresignGet(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.Wrap(errors.ErrInvalidInput, "key is required")
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", errors.Wrapf(err, "failed to presign %s", key)
	}

	return req.URL, nil
}
