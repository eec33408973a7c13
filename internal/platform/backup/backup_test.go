package backup_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"calmtrace/internal/platform/backup"
	"calmtrace/internal/platform/logging"
	"calmtrace/internal/platform/sqlitedb"
)

type fakePutter struct {
	bucket, key string
	body        []byte
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.bucket = *in.Bucket
	f.key = *in.Key
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func TestRunSnapshotsAndUploads(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	db, err := sqlitedb.Open(filepath.Join(dir, "calmtrace.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE t (v INTEGER); INSERT INTO t VALUES (1);`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	putter := &fakePutter{}
	svc := backup.NewService(db, putter, logging.Discard())
	now := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)

	res, err := svc.Run(context.Background(), filepath.Join(dir, "snapshots"), "bucket-1", "db/calmtrace.db", now)
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}
	if !res.Uploaded || putter.bucket != "bucket-1" || putter.key != "db/calmtrace.db" {
		t.Fatalf("unexpected upload result %+v putter=%s/%s", res, putter.bucket, putter.key)
	}
	if int64(len(putter.body)) != res.Bytes || res.Bytes == 0 {
		t.Fatalf("uploaded %d bytes, snapshot has %d", len(putter.body), res.Bytes)
	}

	snap, err := sqlitedb.Open(res.SnapshotPath)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer snap.Close()
	var v int
	if err := snap.QueryRow(`SELECT v FROM t`).Scan(&v); err != nil || v != 1 {
		t.Fatalf("snapshot content v=%d err=%v", v, err)
	}
}

func TestRunWithoutBucketKeepsLocalSnapshot(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	db, err := sqlitedb.Open(filepath.Join(dir, "calmtrace.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	putter := &fakePutter{}
	res, err := backup.NewService(db, putter, logging.Discard()).Run(context.Background(), dir, "", "k", time.Now())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}
	if res.Uploaded || putter.body != nil {
		t.Fatalf("expected local-only snapshot, got %+v", res)
	}
}
