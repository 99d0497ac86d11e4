// Package storage persists uploaded receipt files in S3 or an S3-compatible
// service. The S3 client sits behind a narrow interface so module tests can
// substitute a fake without network access.
package storage
