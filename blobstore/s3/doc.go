// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "bitmaps/")
//
//	err = snapshot.Save(ctx, store, "visited.gbm", bm)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart streaming uploads for large snapshots
//   - CRC32C integrity checks on single-part puts
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
