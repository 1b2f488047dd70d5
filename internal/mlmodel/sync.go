package mlmodel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore is the subset of the S3 client used to pull artifacts.
type ObjectStore interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Sync downloads every object under bucket/prefix into dir, keeping the
// relative layout so ONNX directories survive the copy. It returns the
// number of files written.
func Sync(ctx context.Context, store ObjectStore, bucket, prefix, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("[ModelSync] failed to create model dir: %w", err)
	}

	paginator := s3.NewListObjectsV2Paginator(store, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	written := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return written, fmt.Errorf("[ModelSync] failed to list s3://%s/%s: %w", bucket, prefix, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			target, ok := localPath(dir, prefix, key)
			if !ok {
				slog.Warn("[ModelSync] Skipping object outside model dir",
					slog.String("key", key))
				continue
			}

			if err := download(ctx, store, bucket, key, target); err != nil {
				return written, err
			}
			written++
		}
	}

	slog.Info("[ModelSync] Model artifacts synced",
		slog.String("bucket", bucket),
		slog.String("prefix", prefix),
		slog.Int("files", written))
	return written, nil
}

func localPath(dir, prefix, key string) (string, bool) {
	rel := strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		return "", false
	}

	target := filepath.Join(dir, filepath.FromSlash(rel))
	relToDir, err := filepath.Rel(dir, target)
	if err != nil || relToDir == ".." || strings.HasPrefix(relToDir, ".."+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}

func download(ctx context.Context, store ObjectStore, bucket, key, target string) error {
	out, err := store.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("[ModelSync] failed to get %s: %w", key, err)
	}
	defer out.Body.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("[ModelSync] failed to create %s: %w", filepath.Dir(target), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return fmt.Errorf("[ModelSync] failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, out.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("[ModelSync] failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[ModelSync] failed to close %s: %w", key, err)
	}

	return os.Rename(tmp.Name(), target)
}
