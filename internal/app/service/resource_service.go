package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	"github.com/ikkim/memolite-backend/internal/storage"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrStorageDisabled  = errors.New("object storage is not configured")
)

type ResourceService interface {
	CreateUpload(ctx context.Context, userID uint, req model.PresignedURLRequest) (*model.Resource, *storage.PresignedURLResponse, error)
	ListResources(userID uint, query model.ResourceQuery) (*model.ResourcePage, error)
	DeleteResource(ctx context.Context, userID, resourceID uint) error
}

type resourceService struct {
	resourceRepo repository.ResourceRepository
	storage      storage.ObjectStorage
}

func NewResourceService(resourceRepo repository.ResourceRepository, objectStorage storage.ObjectStorage) ResourceService {
	return &resourceService{
		resourceRepo: resourceRepo,
		storage:      objectStorage,
	}
}

// CreateUpload validates the file, presigns an upload URL and records the resource.
func (s *resourceService) CreateUpload(ctx context.Context, userID uint, req model.PresignedURLRequest) (*model.Resource, *storage.PresignedURLResponse, error) {
	if s.storage == nil {
		return nil, nil, ErrStorageDisabled
	}
	if err := storage.ValidateContentType(req.ContentType, storage.AllowedContentTypes); err != nil {
		return nil, nil, newValidationError("content_type", err.Error())
	}
	if err := storage.ValidateFileSize(req.FileSize, storage.MaxResourceSize); err != nil {
		return nil, nil, newValidationError("file_size", err.Error())
	}

	folder := fmt.Sprintf("resources/%d", userID)
	presigned, err := s.storage.PresignUpload(ctx, req.Filename, req.ContentType, folder, req.FileSize)
	if err != nil {
		logger.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"user_id":      userID,
			"content_type": req.ContentType,
		})
		return nil, nil, err
	}

	resource := &model.Resource{
		UserID:      userID,
		ObjectKey:   presigned.Key,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.FileSize,
		URL:         presigned.FileURL,
	}
	if err := s.resourceRepo.Create(resource); err != nil {
		return nil, nil, storeError(err)
	}

	logger.Info("Resource upload prepared", map[string]interface{}{
		"resource_id": resource.ID,
		"user_id":     userID,
		"key":         presigned.Key,
	})
	return resource, presigned, nil
}

// ListResources returns one page of the user's resources with the clamped limit and offset applied.
func (s *resourceService) ListResources(userID uint, query model.ResourceQuery) (*model.ResourcePage, error) {
	limit, ok := model.ParseLimit(query.Limit)
	if !ok {
		return nil, newValidationError("limit", "must be an integer")
	}
	offset, ok := model.ParseOffset(query.Offset)
	if !ok {
		return nil, newValidationError("offset", "must be an integer")
	}

	resources, total, err := s.resourceRepo.FindByUserID(userID, limit, offset)
	if err != nil {
		return nil, storeError(err)
	}
	if resources == nil {
		resources = []model.Resource{}
	}
	return &model.ResourcePage{
		Resources: resources,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}, nil
}

// DeleteResource removes the stored object and the row. Other users' resources read as missing.
func (s *resourceService) DeleteResource(ctx context.Context, userID, resourceID uint) error {
	resource, err := s.resourceRepo.FindByID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResourceNotFound
		}
		return storeError(err)
	}
	if resource.UserID != userID {
		logger.Warn("Resource delete rejected: not owner", map[string]interface{}{
			"resource_id": resourceID,
			"user_id":     userID,
		})
		return ErrResourceNotFound
	}

	if s.storage != nil {
		if err := s.storage.DeleteObject(ctx, resource.ObjectKey); err != nil {
			logger.Error("Failed to delete resource object", err, map[string]interface{}{
				"resource_id": resourceID,
				"key":         resource.ObjectKey,
			})
			return err
		}
	}

	if err := s.resourceRepo.Delete(resourceID); err != nil {
		return storeError(err)
	}

	logger.Info("Resource deleted", map[string]interface{}{
		"resource_id": resourceID,
		"user_id":     userID,
	})
	return nil
}
