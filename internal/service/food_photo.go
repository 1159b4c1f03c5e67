package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/logging"
	"nutrify/diet-tracker/internal/repository"
	"nutrify/diet-tracker/internal/storage"
)

var (
	ErrPhotoStorageDisabled = errors.New("photo storage is not configured")
	ErrPhotoNotFound        = errors.New("food log has no photo")
	ErrPhotoNotUploaded     = errors.New("photo was not uploaded")
	ErrUploadURLError       = errors.New("failed to generate upload URL")
	ErrDownloadURLError     = errors.New("failed to generate download URL")
)

// RequestPhotoUploadURL issues a presigned PUT for a meal photo of an entry.
func (s *foodLogService) RequestPhotoUploadURL(ctx context.Context, userID, id primitive.ObjectID, contentType string) (*PhotoUploadURL, error) {
	if s.fileStorage == nil {
		return nil, ErrPhotoStorageDisabled
	}
	if !isImage(contentType) {
		return nil, fmt.Errorf("%w: content type must be image/*", ErrValidationFailed)
	}
	if _, err := s.GetFoodLog(ctx, userID, id); err != nil {
		return nil, err
	}

	objectKey := storage.PhotoObjectKey(userID.Hex(), id.Hex(), contentType)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		logging.From(ctx, s.log).Error("presign upload failed", slog.String("key", objectKey), logging.Err(err))
		return nil, ErrUploadURLError
	}
	return &PhotoUploadURL{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmPhoto records an uploaded photo and links it to the entry,
// replacing any previous one.
func (s *foodLogService) ConfirmPhoto(ctx context.Context, userID, id primitive.ObjectID, objectKey, fileName string, size int64, contentType string) (*domain.FoodPhoto, error) {
	if s.fileStorage == nil {
		return nil, ErrPhotoStorageDisabled
	}
	if !isImage(contentType) || size < 0 {
		return nil, fmt.Errorf("%w: invalid photo metadata", ErrValidationFailed)
	}
	entry, err := s.GetFoodLog(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !storage.PhotoKeyBelongsTo(objectKey, userID.Hex(), id.Hex()) {
		return nil, fmt.Errorf("%w: object key was not issued for this food log", ErrValidationFailed)
	}

	exists, err := s.fileStorage.ObjectExists(ctx, objectKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPhotoNotUploaded
	}

	// An entry has at most one photo record; the previous one gives way.
	prev, err := s.photoRepo.GetByFoodLogID(ctx, id)
	switch {
	case err == nil:
		if prev.S3ObjectKey != objectKey {
			if err := s.fileStorage.DeleteObject(ctx, prev.S3ObjectKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
				logging.From(ctx, s.log).Warn("failed to remove replaced photo",
					slog.String("food_log_id", id.Hex()), slog.String("key", prev.S3ObjectKey), logging.Err(err))
			}
		}
		if err := s.photoRepo.Delete(ctx, prev.ID); err != nil {
			return nil, err
		}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	photo := &domain.FoodPhoto{
		FoodLogID:   id,
		UserID:      userID,
		S3ObjectKey: objectKey,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
	}
	photoID, err := s.photoRepo.Create(ctx, photo)
	if err != nil {
		return nil, err
	}
	photo.ID = photoID

	if err := s.logRepo.SetPhoto(ctx, id, &photoID); err != nil {
		if delErr := s.photoRepo.Delete(ctx, photoID); delErr != nil {
			logging.From(ctx, s.log).Error("failed to roll back photo record",
				slog.String("photo_id", photoID.Hex()), logging.Err(delErr))
		}
		return nil, err
	}
	entry.PhotoID = &photoID

	s.emit(ctx, userID, "photo", entry)
	return photo, nil
}

// GetPhotoURL returns a presigned GET for the entry's photo.
func (s *foodLogService) GetPhotoURL(ctx context.Context, userID, id primitive.ObjectID) (string, error) {
	if s.fileStorage == nil {
		return "", ErrPhotoStorageDisabled
	}
	entry, err := s.GetFoodLog(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if entry.PhotoID == nil {
		return "", ErrPhotoNotFound
	}
	photo, err := s.photoRepo.GetByID(ctx, *entry.PhotoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrPhotoNotFound
		}
		return "", err
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, photo.S3ObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		logging.From(ctx, s.log).Error("presign download failed", slog.String("key", photo.S3ObjectKey), logging.Err(err))
		return "", ErrDownloadURLError
	}
	return url, nil
}

// DeletePhoto unlinks and removes the entry's photo.
func (s *foodLogService) DeletePhoto(ctx context.Context, userID, id primitive.ObjectID) error {
	if s.fileStorage == nil {
		return ErrPhotoStorageDisabled
	}
	entry, err := s.GetFoodLog(ctx, userID, id)
	if err != nil {
		return err
	}
	if entry.PhotoID == nil {
		return ErrPhotoNotFound
	}
	if err := s.logRepo.SetPhoto(ctx, id, nil); err != nil {
		return err
	}
	return s.removePhoto(ctx, *entry.PhotoID)
}

// removePhoto deletes the stored object and its metadata record.
func (s *foodLogService) removePhoto(ctx context.Context, photoID primitive.ObjectID) error {
	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if s.fileStorage != nil {
		if err := s.fileStorage.DeleteObject(ctx, photo.S3ObjectKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			return err
		}
	}
	return s.photoRepo.Delete(ctx, photo.ID)
}

func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}
