// Package minio provides a blobstore.Store backed by the MinIO client.
//
// It works against MinIO and any other S3-compatible server (Ceph, Garage,
// SeaweedFS) without pulling in the AWS SDK.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "bitmaps/")
//	bm, err := snapshot.Load(ctx, store, "visited.gbm")
package minio
