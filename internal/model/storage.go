package model

import "context"

// ObjectStorage is a bucket-scoped blob store used for archiving.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
}
