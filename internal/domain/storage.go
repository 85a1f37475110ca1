package domain

import "context"

// ObjectStore is the object-storage port used for invite images.
// Keys are namespaced per user by the caller.
type ObjectStore interface {
	// Upload stores body under key and returns a publicly reachable URL.
	Upload(ctx context.Context, key, contentType string, body []byte) (url string, err error)
	Delete(ctx context.Context, key string) error
}
