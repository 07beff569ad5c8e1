package providers

import "context"

// StoredObject describes one uploaded photo in object storage.
type StoredObject struct {
	Key         string
	URL         string
	Size        int64
	ContentType string
}

// ObjectStore abstracts the S3-compatible bucket that mirrored listing
// photos are uploaded to for CDN delivery.
type ObjectStore interface {
	// Put uploads the object under key with the given content type and a
	// long-lived cache-control header, returning its public URL.
	Put(ctx context.Context, key string, body []byte, contentType string) (*StoredObject, error)

	Exists(ctx context.Context, key string) (bool, error)
}
