package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrUnsupportedMediaType = errors.New("unsupported media content type")

// MediaStorage defines the object storage operations for exercise demo
// media. Uploads and downloads go straight to the provider through
// presigned URLs; the server never proxies media bytes.
type MediaStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows a PUT
	// request for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows a GET
	// request for downloading/viewing an object directly from the provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// Exercise demo media is limited to images and short videos.
var mediaExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"video/mp4":  "mp4",
	"video/webm": "webm",
}

// MediaObjectKey builds the bucket key for an exercise's demo media.
// Keys are namespaced per user and exercise so deleting an exercise can
// clean up its media without listing the bucket.
func MediaObjectKey(userID, exerciseID, contentType string) (string, error) {
	ext, ok := mediaExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, contentType)
	}
	return fmt.Sprintf("media/%s/%s/%s.%s", userID, exerciseID, uuid.NewString(), ext), nil
}
