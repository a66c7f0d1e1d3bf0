// File: internal/repository/user/gorm_user_repository.go
package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/iyunix/hammer/internal/domain"
	"github.com/iyunix/hammer/internal/repository"
)

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create inserts the user. A second user for the same phone number yields
// domain.ErrConflict.
func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.PhoneNumber == "" {
		return errors.New("user with phone number is required")
	}
	err := repository.Conn(ctx, r.db).Create(user).Error
	if repository.IsUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if id == 0 {
		return nil, domain.ErrUserNotFound
	}
	var user domain.User
	err := repository.Conn(ctx, r.db).First(&user, id).Error
	return handleFindError(err, &user)
}

func (r *gormUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var user domain.User
	err := repository.Conn(ctx, r.db).Where("phone_number = ?", phone).First(&user).Error
	return handleFindError(err, &user)
}

// FindByIDs loads users in id order; unknown ids are skipped.
func (r *gormUserRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error) {
	users := []domain.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := repository.Conn(ctx, r.db).
		Where("id IN ?", ids).
		Order("id asc").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users by id: %w", err)
	}
	return users, nil
}

func (r *gormUserRepository) Delete(ctx context.Context, id uint) error {
	result := repository.Conn(ctx, r.db).Delete(&domain.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// FindAllWithPaginationAndSearch provides a paginated, searchable query for users.
// A limit of 0 returns every matching user.
func (r *gormUserRepository) FindAllWithPaginationAndSearch(ctx context.Context, page, limit int, search string) ([]domain.User, int64, error) {
	var users []domain.User
	var total int64

	base := func() *gorm.DB {
		query := repository.Conn(ctx, r.db).Model(&domain.User{})
		if search != "" {
			query = query.Where("phone_number LIKE ?", "%"+search+"%")
		}
		return query
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := base().Order("id asc")
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		query = query.Limit(limit).Offset((page - 1) * limit)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func handleFindError(err error, user *domain.User) (*domain.User, error) {
	if err == nil {
		return user, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	return nil, fmt.Errorf("query user: %w", err)
}
