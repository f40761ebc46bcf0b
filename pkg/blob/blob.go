package blob

import "context"

// Object is what the store hands back for an uploaded file.
type Object struct {
	ID  string `json:"id"`
	URL string `json:"url"`
	Key string `json:"key"`
}

// Store is the media storage boundary. The provisioning workflow only ever
// needs a stable key/URL for bytes it hands over.
type Store interface {
	Put(ctx context.Context, data []byte, filename, contentType string) (*Object, error)
	Resolve(key string) string
	Delete(ctx context.Context, key string) error
}
