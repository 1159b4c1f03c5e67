package storage

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultPresignedURLExpiry is used when a caller passes a non-positive expiry.
const DefaultPresignedURLExpiry = 15 * time.Minute

// ErrObjectNotFound is returned when a key does not exist in the bucket.
var ErrObjectNotFound = errors.New("object not found in storage")

// FileStorage defines the object storage operations used for meal photos.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a temporary URL accepting a PUT of objectKey.
	// The uploader must send the same Content-Type.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL returns a temporary URL for a GET of objectKey.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// ObjectExists reports whether objectKey has been uploaded.
	ObjectExists(ctx context.Context, objectKey string) (bool, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
	"image/gif":  ".gif",
}

// PhotoObjectKey builds a unique key for a meal photo of one food log entry.
func PhotoObjectKey(userID, foodLogID, contentType string) string {
	ext := imageExtensions[strings.ToLower(contentType)]
	return path.Join("food-photos", userID, foodLogID, uuid.NewString()+ext)
}

// PhotoKeyBelongsTo reports whether key was issued for this user and entry.
func PhotoKeyBelongsTo(key, userID, foodLogID string) bool {
	if path.Clean(key) != key {
		return false
	}
	return strings.HasPrefix(key, path.Join("food-photos", userID, foodLogID)+"/")
}
