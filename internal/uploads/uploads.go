package uploads

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted image payload.
const MaxImageSize = 5 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadError is a rejected upload with a reason fit for the client.
type UploadError struct {
	Reason string
}

func (e *UploadError) Error() string {
	return "upload rejected: " + e.Reason
}

// Store persists an image and returns the reference clients use to fetch it.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// Handler validates and stores uploaded images.
type Handler struct {
	store   Store
	maxSize int64
}

// NewHandler constructs a Handler writing to store.
func NewHandler(store Store) *Handler {
	return &Handler{store: store, maxSize: MaxImageSize}
}

// Save validates the multipart file and stores it under a random name.
func (h *Handler) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", &UploadError{Reason: "no file provided"}
	}
	if file.Size > h.maxSize {
		return "", &UploadError{Reason: fmt.Sprintf("image must be at most %d MB", h.maxSize>>20)}
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", &UploadError{Reason: "only jpeg, jpg, png, gif and webp images are allowed"}
	}
	contentType := strings.ToLower(strings.TrimSpace(file.Header.Get("Content-Type")))
	if !allowedContentTypes[contentType] {
		return "", &UploadError{Reason: "only jpeg, jpg, png, gif and webp images are allowed"}
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	key := uuid.NewString() + ext
	ref, err := h.store.Put(ctx, key, contentType, io.LimitReader(src, h.maxSize+1), file.Size)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return ref, nil
}
