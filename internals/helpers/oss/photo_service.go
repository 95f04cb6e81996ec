package oss

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"momentoamor_backend/internals/configs"
)

const maxUploadSize = int64(5 * 1024 * 1024)

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// PhotoStore is the storage facade used by the order controller. Photo
// uploads must finish before an order row is written.
type PhotoStore interface {
	UploadOrderPhoto(ctx context.Context, orderID uuid.UUID, fh *multipart.FileHeader) (publicURL string, err error)
	DeleteByPublicURL(ctx context.Context, publicURL string) error
}

// OSSPhotoStore stores photos on Aliyun OSS under orders/<order-id>/,
// re-encoded to WebP when the format supports it.
type OSSPhotoStore struct {
	svc *OSSService
}

func NewOSSPhotoStore(cfg configs.OSSConfig) (*OSSPhotoStore, error) {
	svc, err := NewOSSService(cfg)
	if err != nil {
		return nil, err
	}
	return &OSSPhotoStore{svc: svc}, nil
}

func (s *OSSPhotoStore) UploadOrderPhoto(ctx context.Context, orderID uuid.UUID, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "arquivo de foto ausente")
	}
	if fh.Size > maxUploadSize {
		return "", fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("%s: máximo 5MB por foto", fh.Filename))
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxUploadSize {
		return "", fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("%s: máximo 5MB por foto", fh.Filename))
	}

	contentType := SniffContentType(data)
	if !allowedUploadTypes[contentType] {
		return "", fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("%s: use JPG, PNG, GIF ou WebP", fh.Filename))
	}

	// Animated GIFs are kept as-is; everything else becomes WebP.
	ext := "webp"
	if contentType != "image/gif" {
		converted, err := EncodeWebP(data)
		if err != nil {
			return "", fmt.Errorf("convert %s: %w", fh.Filename, err)
		}
		data = converted
		contentType = "image/webp"
	} else {
		ext = "gif"
	}

	key := fmt.Sprintf("orders/%s/%s.%s", orderID, shortID(), ext)
	return s.svc.UploadBytes(key, data, contentType)
}

func (s *OSSPhotoStore) DeleteByPublicURL(ctx context.Context, publicURL string) error {
	return s.svc.DeleteByPublicURL(publicURL)
}

func shortID() string {
	return strings.Split(uuid.New().String(), "-")[0]
}
