// Package storage defines the object storage contract the services depend
// on. Implementations take a locally staged file, push it to the remote
// store, and must remove the local file whether or not the upload succeeds.
package storage

import "context"

type ResourceKind string

const (
	KindVideo ResourceKind = "video"
	KindImage ResourceKind = "image"
)

// UploadResult describes a stored object. Duration is populated for video
// uploads only, probed from the media before it leaves local disk.
type UploadResult struct {
	URL      string
	ObjectID string
	Duration float64
}

type Client interface {
	// Upload stores the file at localPath remotely. The local file is
	// removed on both success and failure paths.
	Upload(ctx context.Context, localPath string, kind ResourceKind) (*UploadResult, error)

	// Delete removes a stored object by its id. Best-effort: callers treat
	// failures as log-and-continue.
	Delete(ctx context.Context, objectID string, kind ResourceKind) error
}
