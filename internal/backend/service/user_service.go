package service

import (
	"context"

	"campuscomplaint/internal/backend/repository"
)

// UserService serves profile reads and edits.
type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*repository.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserError(err)
	}
	return user, nil
}

// Edit changes name and mobile number. Email and roles are not editable here.
func (s *UserService) Edit(ctx context.Context, userID int64, name, mobile string) error {
	if err := requireFields(field{"name", name}, field{"mobileNumber", mobile}); err != nil {
		return err
	}
	if err := validateMobile(mobile); err != nil {
		return err
	}
	if err := s.users.UpdateProfile(ctx, userID, name, mobile); err != nil {
		return mapUserError(err)
	}
	return nil
}

func (s *UserService) List(ctx context.Context) ([]repository.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, mapUserError(err)
	}
	return users, nil
}
