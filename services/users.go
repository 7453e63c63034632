package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ewm/api/models"
)

type UserService struct {
	users UserRepository
	log   *zap.Logger
}

func NewUserService(users UserRepository, log *zap.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) Create(ctx context.Context, req models.NewUserRequest) (*models.User, error) {
	s.log.Info("creating user", zap.String("email", req.Email))
	u := &models.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// List returns the users with the given ids, or every user when ids is empty.
func (s *UserService) List(ctx context.Context, ids []int64, page models.Page) ([]models.User, error) {
	s.log.Info("listing users", zap.Int64s("ids", ids), zap.Int("from", page.From), zap.Int("size", page.Size))
	return s.users.List(ctx, ids, page)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	s.log.Info("deleting user", zap.Int64("userId", id))
	return s.users.Delete(ctx, id)
}
