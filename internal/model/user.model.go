package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("validation error")

type User struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Username  string     `json:"username"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"` // nil while the row is live
}

func (u *User) Validate() error {
	if u.Name == "" {
		return fmt.Errorf("%w: name cannot be null", ErrValidation)
	}
	if u.Username == "" {
		return fmt.Errorf("%w: username cannot be null", ErrValidation)
	}
	return nil
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// UserFilter selects the rows of a bulk operation.
type UserFilter struct {
	Username *string
	IDs      []uuid.UUID
	// WithDeleted disables the paranoid scope on reads.
	WithDeleted bool
}

func (f UserFilter) Empty() bool {
	return f.Username == nil && len(f.IDs) == 0
}

func ByUsername(username string) UserFilter {
	return UserFilter{Username: &username}
}
