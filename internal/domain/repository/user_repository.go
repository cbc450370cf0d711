package repository

import (
	"context"

	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
)

// UserRepository persists users keyed by their unique username.
type UserRepository interface {
	// CreateIfAbsent inserts u unless its username is already taken. On
	// insert it fills u.ID and timestamps and reports created=true; losing
	// a create race is not an error.
	CreateIfAbsent(ctx context.Context, u *entity.User) (created bool, err error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// BackfillEmail sets the email only if none is stored yet and returns
	// the user as stored afterwards.
	BackfillEmail(ctx context.Context, userID, email string) (*entity.User, error)
}
