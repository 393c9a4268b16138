package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/hupe1980/genbitmap/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPrefix(t *testing.T) {
	assert.Equal(t, "root/", listPrefix("root/", ""))
	assert.Equal(t, "root/", listPrefix("root", ""))
	assert.Equal(t, "root/daily/", listPrefix("root", "daily/"))
	assert.Equal(t, "root/a", listPrefix("root", "a"))
	assert.Equal(t, "", listPrefix("", ""))
}

func TestRelative(t *testing.T) {
	assert.Equal(t, "a/b.gbm", relative("root/", "root/a/b.gbm"))
	assert.Equal(t, "a/b.gbm", relative("root", "root/a/b.gbm"))
	assert.Equal(t, "x", relative("", "x"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NotFound"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("boom")))
}

// TestMinioStore_Integration requires a running MinIO instance.
// MINIO_ENDPOINT overrides the default localhost:9000.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	bucket := "test-genbitmap"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, fmt.Sprintf("run-%d/", time.Now().UnixNano()))

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.gbm", data))

	blob, err := store.Open(ctx, "test.gbm")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	got, err := blobstore.ReadAll(ctx, blob)
	require.NoError(t, err)
	require.Equal(t, data, got)

	rc, err := blob.ReadRange(ctx, 6, 5)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(part))
	require.NoError(t, rc.Close())
	require.NoError(t, blob.Close())

	wb, err := store.Create(ctx, "stream.gbm")
	require.NoError(t, err)
	_, err = wb.Write([]byte("streamed data"))
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"stream.gbm", "test.gbm"}, names)

	require.NoError(t, store.Delete(ctx, "test.gbm"))
	require.NoError(t, store.Delete(ctx, "test.gbm"))

	_, err = store.Open(ctx, "test.gbm")
	assert.True(t, errors.Is(err, blobstore.ErrNotFound))

	_ = store.Delete(ctx, "stream.gbm")
}
