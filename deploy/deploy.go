// Package deploy uploads a built site to an S3 compatible bucket.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Config holds the bucket settings.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // S3 compatible endpoint, empty for AWS
	Prefix    string // key prefix inside the bucket
	AccessKey string
	SecretKey string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader copies a directory tree into a bucket.
type Uploader struct {
	client objectPutter
	bucket string
	prefix string
	log    *zap.Logger
}

// New creates an Uploader. Credentials come from cfg when set and from the
// default AWS chain otherwise.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("deploy: bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("deploy: load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newUploader(client, cfg.Bucket, cfg.Prefix, log), nil
}

func newUploader(client objectPutter, bucket, prefix string, log *zap.Logger) *Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		log:    log,
	}
}

// UploadDir uploads every file below dir and returns how many were sent.
func (u *Uploader) UploadDir(ctx context.Context, dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if err := u.upload(ctx, p, filepath.ToSlash(rel)); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, err
	}
	u.log.Info("uploaded site", zap.String("bucket", u.bucket), zap.String("prefix", u.prefix), zap.Int("files", n))
	return n, nil
}

func (u *Uploader) upload(ctx context.Context, name, rel string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	key := u.key(rel)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         f,
		ContentType:  aws.String(ContentType(rel)),
		CacheControl: aws.String(CacheControl(rel)),
	})
	if err != nil {
		return fmt.Errorf("deploy: put %s: %w", key, err)
	}
	u.log.Debug("uploaded", zap.String("key", key))
	return nil
}

func (u *Uploader) key(rel string) string {
	if u.prefix == "" {
		return rel
	}
	return path.Join(u.prefix, rel)
}

// ContentType returns the MIME type stored with an object.
func ContentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == ".webmanifest" {
		return "application/manifest+json"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// CacheControl returns the Cache-Control header stored with an object.
// Pages and feeds are revalidated; everything else is cached for a day.
func CacheControl(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".xml", ".txt", ".webmanifest":
		return "no-cache"
	}
	return "public, max-age=86400"
}
