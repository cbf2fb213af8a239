package repository

import (
	"time"

	"github.com/FuketsuBaka/sequelize-sscce/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserEntity is a paranoid model: deletes stamp deleted_at, and the unique
// index spans (username, deleted_at) so live rows all share a NULL there.
type UserEntity struct {
	ID        uuid.UUID      `db:"id"         gorm:"column:id;type:uuid;primaryKey;not null"`
	Name      string         `db:"name"       gorm:"column:name;type:varchar(255);not null"`
	Username  string         `db:"username"   gorm:"column:username;type:varchar(255);not null;uniqueIndex:i_username_paranoid,priority:1"`
	CreatedAt time.Time      `db:"created_at" gorm:"column:created_at;not null"`
	UpdatedAt time.Time      `db:"updated_at" gorm:"column:updated_at;not null"`
	DeletedAt gorm.DeletedAt `db:"deleted_at" gorm:"column:deleted_at;uniqueIndex:i_username_paranoid,priority:2"`
}

func (UserEntity) TableName() string {
	return "users"
}

// Timestamps opts the model into automatic timestamps regardless of the
// connection default.
func (UserEntity) Timestamps() bool {
	return true
}

func (e *UserEntity) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func toUserEntity(m *model.User) *UserEntity {
	if m == nil {
		return nil
	}
	e := &UserEntity{
		ID:        m.ID,
		Name:      m.Name,
		Username:  m.Username,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.DeletedAt != nil {
		e.DeletedAt = gorm.DeletedAt{Time: *m.DeletedAt, Valid: true}
	}
	return e
}

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	m := &model.User{
		ID:        e.ID,
		Name:      e.Name,
		Username:  e.Username,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.DeletedAt.Valid {
		deletedAt := e.DeletedAt.Time
		m.DeletedAt = &deletedAt
	}
	return m
}

func toUserModels(entities []*UserEntity) []*model.User {
	if entities == nil {
		return nil
	}
	models := make([]*model.User, len(entities))
	for i, e := range entities {
		models[i] = toUserModel(e)
	}
	return models
}
