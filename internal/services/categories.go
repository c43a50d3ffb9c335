package services

import (
	"context"
	"fmt"

	"github.com/monocle-dev/taskcalendar/internal/models"
	"github.com/monocle-dev/taskcalendar/internal/types"
)

func (s *Service) ListCategories(ctx context.Context, userID uint) ([]types.CategoryView, error) {
	var categories []models.Category

	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	views := make([]types.CategoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, categoryView(category))
	}

	return views, nil
}

// CreateCategory adds a category for userID. Names need not be unique.
func (s *Service) CreateCategory(ctx context.Context, userID uint, req types.CreateCategoryRequest) (types.CategoryView, error) {
	if req.Name == "" {
		return types.CategoryView{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	color := req.Color
	if color == "" {
		color = types.DefaultCategoryColor
	}

	category := models.Category{
		Name:   req.Name,
		Color:  color,
		UserID: userID,
	}

	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return types.CategoryView{}, fmt.Errorf("create category: %w", err)
	}

	s.notify(userID, types.ResourceCategories)

	return categoryView(category), nil
}

func categoryView(category models.Category) types.CategoryView {
	return types.CategoryView{
		ID:    category.ID,
		Name:  category.Name,
		Color: category.Color,
	}
}
