package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arnold/habits-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

func (s *CategoryService) List(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, storageError("list categories", err)
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, userID uuid.UUID, req models.CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := s.checkNameFree(ctx, userID, name, uuid.Nil); err != nil {
		return nil, err
	}

	category := models.Category{UserID: userID, Name: name, Color: req.Color}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, storageError("create category", err)
	}
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, categoryID uuid.UUID, req models.UpdateCategoryRequest) (*models.Category, error) {
	category, err := findCategory(ctx, s.db, userID, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		if name != category.Name {
			if err := s.checkNameFree(ctx, userID, name, category.ID); err != nil {
				return nil, err
			}
		}
		category.Name = name
	}
	if req.Color != nil {
		category.Color = req.Color
	}

	if err := s.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, storageError("update category", err)
	}
	return category, nil
}

// Delete refuses while goals still belong to the category.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID uuid.UUID) error {
	category, err := findCategory(ctx, s.db, userID, categoryID)
	if err != nil {
		return err
	}

	var goals int64
	if err := s.db.WithContext(ctx).Model(&models.Goal{}).
		Where("category_id = ?", category.ID).
		Count(&goals).Error; err != nil {
		return storageError("count category goals", err)
	}
	if goals > 0 {
		return fmt.Errorf("%w: category still has %d goals", ErrConflict, goals)
	}

	if err := s.db.WithContext(ctx).Delete(category).Error; err != nil {
		return storageError("delete category", err)
	}
	return nil
}

func (s *CategoryService) checkNameFree(ctx context.Context, userID uuid.UUID, name string, except uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("user_id = ? AND name = ? AND id <> ?", userID, name, except).
		Count(&count).Error; err != nil {
		return storageError("check category name", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: a category named %q already exists", ErrConflict, name)
	}
	return nil
}

func findCategory(ctx context.Context, gdb *gorm.DB, userID, categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := gdb.WithContext(ctx).Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("category")
	}
	if err != nil {
		return nil, storageError("get category", err)
	}
	return &category, nil
}
