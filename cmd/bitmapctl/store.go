package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/genbitmap/blobstore"
	minioblob "github.com/hupe1980/genbitmap/blobstore/minio"
	s3blob "github.com/hupe1980/genbitmap/blobstore/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// storeLocation is a parsed --store URL.
type storeLocation struct {
	scheme   string
	endpoint string // minio only
	bucket   string
	prefix   string
	dir      string // file only
}

func parseStoreURL(raw string) (storeLocation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return storeLocation{}, fmt.Errorf("invalid store URL %q: %w", raw, err)
	}

	loc := storeLocation{scheme: u.Scheme}
	path := strings.Trim(u.Path, "/")

	switch u.Scheme {
	case "file":
		dir := u.Host + u.Path
		if dir == "" {
			dir = "."
		}
		loc.dir = filepath.FromSlash(dir)
	case "s3":
		if u.Host == "" {
			return storeLocation{}, fmt.Errorf("invalid store URL %q: missing bucket", raw)
		}
		loc.bucket = u.Host
		loc.prefix = path
	case "minio":
		bucket, prefix, _ := strings.Cut(path, "/")
		if u.Host == "" || bucket == "" {
			return storeLocation{}, fmt.Errorf("invalid store URL %q: want minio://endpoint/bucket[/prefix]", raw)
		}
		loc.endpoint = u.Host
		loc.bucket = bucket
		loc.prefix = prefix
	default:
		return storeLocation{}, fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
	return loc, nil
}

// openStore builds the blob store for loc. S3 uses the default AWS credential
// chain; MinIO reads MINIO_ACCESS_KEY, MINIO_SECRET_KEY and MINIO_SECURE.
func openStore(ctx context.Context, loc storeLocation) (blobstore.Store, error) {
	switch loc.scheme {
	case "file":
		return blobstore.NewLocalStore(loc.dir), nil
	case "s3":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return s3blob.NewStore(awss3.NewFromConfig(cfg), loc.bucket, loc.prefix), nil
	case "minio":
		client, err := minio.New(loc.endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
			Secure: os.Getenv("MINIO_SECURE") == "true",
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minioblob.NewStore(client, loc.bucket, loc.prefix), nil
	default:
		return nil, fmt.Errorf("unsupported store scheme %q", loc.scheme)
	}
}
