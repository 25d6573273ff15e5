package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/truekeo/truekeo-api/internal/models"
	"github.com/truekeo/truekeo-api/internal/store"
)

const (
	avatarSize    = 256
	itemPhotoSize = 1024
	jpegQuality   = 85

	maxUploadBytes = 10 << 20
)

// ObjectStore uploads blobs and hands back public URLs.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)
}

// ProfileInvalidator drops a cached profile copy after a write that bypasses
// the auth service. Satisfied by cache.ProfileCache.
type ProfileInvalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID)
}

// StorageService processes uploaded images and persists their URLs.
type StorageService struct {
	objects      ObjectStore
	users        store.UserStore
	items        store.ItemStore
	profiles     ProfileInvalidator
	avatarBucket string
	itemBucket   string
	log          *zap.Logger
}

// NewStorageService wires the service over the object store and the
// persistence gateways that record the resulting URLs.
func NewStorageService(objects ObjectStore, users store.UserStore, items store.ItemStore, profiles ProfileInvalidator, avatarBucket, itemBucket string, log *zap.Logger) *StorageService {
	return &StorageService{
		objects:      objects,
		users:        users,
		items:        items,
		profiles:     profiles,
		avatarBucket: avatarBucket,
		itemBucket:   itemBucket,
		log:          log,
	}
}

// UploadAvatar resizes the image to a square avatar, stores it under the
// caller's ID and records the URL on the profile.
func (s *StorageService) UploadAvatar(ctx context.Context, callerID uuid.UUID, data []byte) (string, error) {
	if callerID == uuid.Nil {
		return "", models.ErrNotAuthenticated
	}

	jpeg, err := s.processImage(data, avatarSize)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("%s.jpg", callerID)
	url, err := s.objects.Upload(ctx, s.avatarBucket, path, jpeg, "image/jpeg")
	if err != nil {
		s.log.Error("avatar upload failed", zap.String("user_id", callerID.String()), zap.Error(err))
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	if err := s.users.SetAvatarURL(ctx, callerID, url); err != nil {
		return "", err
	}
	// The profile row changed behind the auth service's back; drop the
	// cached copy so /api/me picks up the new avatar immediately.
	s.profiles.Invalidate(ctx, callerID)
	return url, nil
}

// UploadItemPhoto resizes the image for an item gallery, stores it and
// appends the URL to the item's image list. Only the item's owner may add
// photos.
func (s *StorageService) UploadItemPhoto(ctx context.Context, callerID, itemID uuid.UUID, data []byte) (string, error) {
	if callerID == uuid.Nil {
		return "", models.ErrNotAuthenticated
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return "", err
	}
	if item.UserID != callerID {
		return "", models.ErrForbidden
	}

	jpeg, err := s.processImage(data, itemPhotoSize)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("%s/%d.jpg", itemID, len(item.ImageURLs))
	url, err := s.objects.Upload(ctx, s.itemBucket, path, jpeg, "image/jpeg")
	if err != nil {
		s.log.Error("item photo upload failed", zap.String("item_id", itemID.String()), zap.Error(err))
		return "", fmt.Errorf("failed to store item photo: %w", err)
	}

	if err := s.items.AppendImageURL(ctx, itemID, url); err != nil {
		return "", err
	}
	return url, nil
}

// processImage decodes the upload, scales it down to fit the given bounding
// square and re-encodes it as JPEG. Images already smaller than the bound
// keep their size.
func (s *StorageService) processImage(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, models.Preconditionf("image data is required")
	}
	if len(data) > maxUploadBytes {
		return nil, models.Preconditionf("image exceeds the %d MB limit", maxUploadBytes>>20)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, models.Preconditionf("unsupported image format")
	}

	resized := imaging.Fit(img, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
