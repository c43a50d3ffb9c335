package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/monocle-dev/taskcalendar/db"
	"github.com/monocle-dev/taskcalendar/internal/models"
	"github.com/monocle-dev/taskcalendar/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Register creates the account and its default categories in one
// transaction and returns a bearer token for it.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	passwordHash, err := s.passwords.Hash(password)

	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password is too long", ErrInvalidInput)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64

		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&existing).Error; err != nil {
			return fmt.Errorf("check existing user: %w", err)
		}

		if existing > 0 {
			return ErrConflict
		}

		user := models.User{
			Username:     username,
			PasswordHash: passwordHash,
		}

		if err := tx.Create(&user).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("create user: %w", err)
		}

		categories := make([]models.Category, 0, len(types.DefaultCategories))
		for _, c := range types.DefaultCategories {
			categories = append(categories, models.Category{
				Name:   c.Name,
				Color:  c.Color,
				UserID: user.ID,
			})
		}

		if err := tx.Create(&categories).Error; err != nil {
			return fmt.Errorf("seed default categories: %w", err)
		}

		return nil
	})

	if err != nil {
		return "", err
	}

	s.log.WithField("username", username).Info("user registered")

	return s.tokens.Issue(username)
}

// Login returns a token for valid credentials. An unknown username and a
// wrong password both yield ErrUnauthorized after one bcrypt comparison.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	var user models.User

	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("find user: %w", err)
	}

	if !s.passwords.Verify(password, user.PasswordHash) {
		return "", ErrUnauthorized
	}

	return s.tokens.Issue(user.Username)
}

// Authenticate resolves a bearer token to its user. Invalid, expired and
// orphaned tokens are all ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	username, err := s.tokens.Verify(token)

	if err != nil {
		return nil, ErrUnauthorized
	}

	var user models.User

	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &user, nil
}
