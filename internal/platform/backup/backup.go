// Package backup snapshots the SQLite store and ships it to S3.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// ObjectPutter is the slice of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Result struct {
	SnapshotPath string
	Bucket       string
	Key          string
	Bytes        int64
	Uploaded     bool
}

type Service struct {
	db     *sql.DB
	client ObjectPutter
	log    *logrus.Entry
}

func NewService(db *sql.DB, client ObjectPutter, log *logrus.Entry) *Service {
	return &Service{db: db, client: client, log: log}
}

// NewS3Client resolves credentials and region from the default AWS chain.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Snapshot writes a consistent copy of the database into dir.
func (s *Service) Snapshot(ctx context.Context, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("calmtrace-%s.db", now.UTC().Format("20060102T150405Z")))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove stale snapshot: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return "", fmt.Errorf("vacuum into snapshot: %w", err)
	}
	return path, nil
}

// Run snapshots and, when a bucket is given and a client is wired, uploads.
func (s *Service) Run(ctx context.Context, dir, bucket, key string, now time.Time) (Result, error) {
	path, err := s.Snapshot(ctx, dir, now)
	if err != nil {
		return Result{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("stat snapshot: %w", err)
	}
	res := Result{SnapshotPath: path, Bucket: bucket, Key: key, Bytes: info.Size()}
	if bucket == "" || s.client == nil {
		s.log.WithField("path", path).Info("snapshot kept locally")
		return res, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return Result{}, fmt.Errorf("upload snapshot: %w", err)
	}
	res.Uploaded = true
	s.log.WithFields(logrus.Fields{"bucket": bucket, "key": key, "bytes": info.Size()}).Info("snapshot uploaded")
	return res, nil
}
