// Package storage persists translated subtitles behind a backend-neutral
// interface. Backends register themselves through RegisterFactory.
//
// # Backends
//
//   - storage/local: filesystem, with per-object file locks and atomic
//     rename on write
//   - storage/minio: any S3-compatible server through minio-go
//
// # Configuration
//
//	storage:
//	  provider: "minio"
//	  endpoint: "localhost:9000"
//	  bucket: "subtitles"
//	  access_key: "..."
//	  secret_key: "..."
package storage
