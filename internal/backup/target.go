package backup

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/chronochat/internal/config"
	"github.com/dmitrijs2005/chronochat/internal/filex"
	"github.com/dmitrijs2005/chronochat/internal/netx"
)

// Target receives a finished backup file and returns where it ended up.
type Target interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// DirTarget saves backups into a local directory.
type DirTarget struct {
	Dir string
}

func (t DirTarget) Put(ctx context.Context, name string, data []byte) (string, error) {
	dir, err := filex.EnsureDir(t.Dir, ".")
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, filex.SanitizeName(name))
	if err := filex.WriteFile(p, data); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return p, nil
}

// PutObjectAPI is the S3 call the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) PutObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Target uploads backups to a bucket (AWS or any S3-compatible store).
type S3Target struct {
	client PutObjectAPI
	bucket string
	prefix string
}

func NewS3TargetWithClient(client PutObjectAPI, bucket, prefix string) *S3Target {
	return &S3Target{client: client, bucket: bucket, prefix: prefix}
}

// NewS3Target builds a client from cfg. Static credentials are used when an
// access key is configured, the default AWS chain otherwise.
func NewS3Target(ctx context.Context, cfg *config.Config) (*S3Target, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3TargetWithClient(client, cfg.S3Bucket, "backups"), nil
}

func (t *S3Target) Put(ctx context.Context, name string, data []byte) (string, error) {
	key := path.Join(t.prefix, name)
	_, err := t.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(t.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload backup to s3://%s/%s: %w", t.bucket, key, err)
	}
	return "s3://" + t.bucket + "/" + key, nil
}

// URLTarget PUTs backups to an HTTP endpoint, typically a pre-signed
// object-store URL. A URL ending in "/" gets the backup name appended.
type URLTarget struct {
	URL    string
	Client *http.Client
}

func (t URLTarget) Put(ctx context.Context, name string, data []byte) (string, error) {
	dst := t.URL
	if strings.HasSuffix(dst, "/") {
		dst += filex.SanitizeName(name)
	}
	if err := netx.PutBytes(ctx, t.Client, dst, "application/json", data); err != nil {
		return "", fmt.Errorf("upload backup to %s: %w", netx.Redact(dst), err)
	}
	return netx.Redact(dst), nil
}

// NewTarget picks the target named by cfg.BackupTarget.
func NewTarget(ctx context.Context, cfg *config.Config) (Target, error) {
	switch cfg.BackupTarget {
	case config.BackupTargetS3:
		return NewS3Target(ctx, cfg)
	case config.BackupTargetURL:
		return URLTarget{URL: cfg.BackupURL}, nil
	case config.BackupTargetDir, "":
		return DirTarget{Dir: cfg.ResolvedBackupDir()}, nil
	default:
		return nil, fmt.Errorf("unknown backup target %q", cfg.BackupTarget)
	}
}
