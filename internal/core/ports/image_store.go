package ports

import "context"

// ImageUpload carries one in-memory image file received from a client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageStore abstracts the external image-hosting service. Upload returns the
// public identifier recorded on the review; Remove deletes by that identifier.
type ImageStore interface {
	Upload(ctx context.Context, in ImageUpload) (string, error)
	Remove(ctx context.Context, publicID string) error
}
