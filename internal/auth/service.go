package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jdeb-project/jdeb/internal/db/models"
)

// Service provides capability checks against the users table.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{
		db: db,
	}
}

// User loads the user with userID.
func (s *Service) User(ctx context.Context, userID uint64) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// HasCapability checks if the user with userID currently has capability.
func (s *Service) HasCapability(ctx context.Context, userID uint64, capability string) (bool, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return false, err
	}

	return UserCan(user, capability), nil
}

// UserCapabilities returns all capabilities of the user with userID.
func (s *Service) UserCapabilities(ctx context.Context, userID uint64) ([]string, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.Active {
		return nil, nil
	}

	return Capabilities(user.Role), nil
}
