package service

import (
	"context"
	"fmt"

	apperrors "taskboard/internal/errors"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// UserService exposes user directory operations.
type UserService interface {
	ListUsers(ctx context.Context, principal *model.User) ([]model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService over the user repository.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// ListUsers returns every user record. Admin only: the roster exists so
// admins can pick assignees, and it is not visible to members. Password
// hashes never serialize out of the model.
func (s *userService) ListUsers(ctx context.Context, principal *model.User) ([]model.User, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrAdminOnly
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
