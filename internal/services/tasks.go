package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/monocle-dev/taskcalendar/db"
	"github.com/monocle-dev/taskcalendar/internal/models"
	"github.com/monocle-dev/taskcalendar/internal/types"
	"gorm.io/gorm"
)

const taskViewColumns = "tasks.id, tasks.title, tasks.description, tasks.date, tasks.completed, tasks.category_id, " +
	"categories.name AS category_name, categories.color AS category_color"

func taskViews(tx *gorm.DB) *gorm.DB {
	return tx.Model(&models.Task{}).
		Select(taskViewColumns).
		Joins("LEFT JOIN categories ON categories.id = tasks.category_id")
}

// findTaskView loads one task through the ownership-scoped predicate.
func findTaskView(tx *gorm.DB, userID, taskID uint) (types.TaskView, error) {
	var view types.TaskView

	result := taskViews(tx).
		Where("tasks.id = ? AND tasks.user_id = ?", taskID, userID).
		Limit(1).
		Scan(&view)

	if result.Error != nil {
		return types.TaskView{}, fmt.Errorf("load task: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return types.TaskView{}, ErrNotFound
	}

	return view, nil
}

// ListTasks returns the user's tasks in insertion order.
func (s *Service) ListTasks(ctx context.Context, userID uint) ([]types.TaskView, error) {
	views := []types.TaskView{}

	err := taskViews(s.db.WithContext(ctx)).
		Where("tasks.user_id = ?", userID).
		Order("tasks.id ASC").
		Scan(&views).Error

	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return views, nil
}

// CreateTask stores a task for userID. The category id is stored as given:
// it is not checked against the user's own categories.
func (s *Service) CreateTask(ctx context.Context, userID uint, req types.CreateTaskRequest) (types.TaskView, error) {
	if req.Title == "" {
		return types.TaskView{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	if req.Date == nil || req.Date.IsZero() {
		return types.TaskView{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	task := models.Task{
		Title:       req.Title,
		Description: description,
		Date:        req.Date.UTC(),
		UserID:      userID,
		CategoryID:  req.CategoryID,
	}

	var view types.TaskView

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrInvalidCategory
			}
			return fmt.Errorf("create task: %w", err)
		}

		var err error
		view, err = findTaskView(tx, userID, task.ID)
		return err
	})

	if err != nil {
		return types.TaskView{}, err
	}

	s.notify(userID, types.ResourceTasks)

	return view, nil
}

// UpdateTask applies the fields present in patch to a task owned by userID.
func (s *Service) UpdateTask(ctx context.Context, userID, taskID uint, patch types.TaskPatch) (types.TaskView, error) {
	updates, err := taskPatchColumns(patch)
	if err != nil {
		return types.TaskView{}, err
	}

	var view types.TaskView

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task

		if err := tx.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("find task: %w", err)
		}

		if len(updates) > 0 {
			if err := tx.Model(&task).Updates(updates).Error; err != nil {
				if db.IsForeignKeyViolation(err) {
					return ErrInvalidCategory
				}
				return fmt.Errorf("update task: %w", err)
			}
		}

		var findErr error
		view, findErr = findTaskView(tx, userID, task.ID)
		return findErr
	})

	if err != nil {
		return types.TaskView{}, err
	}

	if len(updates) > 0 {
		s.notify(userID, types.ResourceTasks)
	}

	return view, nil
}

// DeleteTask removes a task owned by userID for good.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&models.Task{})

	if result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.notify(userID, types.ResourceTasks)

	return nil
}

// taskPatchColumns turns the present fields of patch into column updates.
// Only category_id may be null.
func taskPatchColumns(patch types.TaskPatch) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if patch.Title.Set {
		if patch.Title.Null || patch.Title.Value == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		updates["title"] = patch.Title.Value
	}

	if patch.Description.Set {
		if patch.Description.Null {
			return nil, fmt.Errorf("%w: description cannot be null", ErrInvalidInput)
		}
		updates["description"] = patch.Description.Value
	}

	if patch.Date.Set {
		if patch.Date.Null || patch.Date.Value.IsZero() {
			return nil, fmt.Errorf("%w: date cannot be null", ErrInvalidInput)
		}
		updates["date"] = patch.Date.Value.UTC()
	}

	if patch.Completed.Set {
		if patch.Completed.Null {
			return nil, fmt.Errorf("%w: completed cannot be null", ErrInvalidInput)
		}
		updates["completed"] = patch.Completed.Value
	}

	if patch.CategoryID.Set {
		if patch.CategoryID.Null {
			updates["category_id"] = nil
		} else {
			updates["category_id"] = patch.CategoryID.Value
		}
	}

	return updates, nil
}
