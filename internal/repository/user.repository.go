package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/FuketsuBaka/sequelize-sscce/internal/model"
	"github.com/FuketsuBaka/sequelize-sscce/pkg/db"
	"gorm.io/gorm"
)

var (
	ErrUniqueViolation = errors.New("unique constraint violated")
	ErrMissingFilter   = errors.New("bulk operation requires a filter")
)

type UserRepository struct {
	*db.DB
}

// NewUserRepository defines the users model on conn so the next Sync creates it.
func NewUserRepository(conn *db.DB) (*UserRepository, error) {
	if err := conn.Define(&UserEntity{}); err != nil {
		return nil, err
	}
	return &UserRepository{
		conn,
	}, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	entity := toUserEntity(user)
	if err := r.Conn(ctx).Create(entity).Error; err != nil {
		return nil, r.classify(ctx, err)
	}

	return toUserModel(entity), nil
}

// Count returns the number of live users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.Conn(ctx).Model(&UserEntity{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRepository) FindAll(ctx context.Context, f model.UserFilter) ([]*model.User, error) {
	q := r.Conn(ctx).Model(&UserEntity{})
	if f.WithDeleted {
		q = q.Unscoped()
	}

	var entities []*UserEntity
	if err := applyUserFilter(q, f).Order("created_at ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toUserModels(entities), nil
}

// Destroy soft-deletes every live user matching f in a single UPDATE, so all
// of them receive the same deleted_at.
func (r *UserRepository) Destroy(ctx context.Context, f model.UserFilter) (int64, error) {
	if f.Empty() {
		return 0, ErrMissingFilter
	}

	result := applyUserFilter(r.Conn(ctx), f).Delete(&UserEntity{})
	if result.Error != nil {
		return 0, r.classify(ctx, result.Error)
	}
	return result.RowsAffected, nil
}

// Restore clears deleted_at on the soft-deleted users matching f.
func (r *UserRepository) Restore(ctx context.Context, f model.UserFilter) (int64, error) {
	if f.Empty() {
		return 0, ErrMissingFilter
	}

	q := r.Conn(ctx).Unscoped().Model(&UserEntity{})
	result := applyUserFilter(q, f).
		Where("deleted_at IS NOT NULL").
		Update("deleted_at", nil)
	if result.Error != nil {
		return 0, r.classify(ctx, result.Error)
	}
	return result.RowsAffected, nil
}

// ForceDestroy physically removes the users matching f, deleted or not.
func (r *UserRepository) ForceDestroy(ctx context.Context, f model.UserFilter) (int64, error) {
	if f.Empty() {
		return 0, ErrMissingFilter
	}

	result := applyUserFilter(r.Conn(ctx).Unscoped(), f).Delete(&UserEntity{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// classify keeps the driver error but tags unique violations so callers can
// match them regardless of dialect.
func (r *UserRepository) classify(ctx context.Context, err error) error {
	translator, ok := r.Conn(ctx).Dialector.(gorm.ErrorTranslator)
	if ok && errors.Is(translator.Translate(err), gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}

func applyUserFilter(q *gorm.DB, f model.UserFilter) *gorm.DB {
	if f.Username != nil {
		q = q.Where("username = ?", *f.Username)
	}
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}
	return q
}
