package user

import (
	"context"

	"github.com/iyunix/hammer/internal/domain"
)

// UserRepository handles user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error)
	Delete(ctx context.Context, id uint) error
	FindAllWithPaginationAndSearch(ctx context.Context, page, limit int, search string) ([]domain.User, int64, error)
}
