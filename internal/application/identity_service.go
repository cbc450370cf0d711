package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-slot-booking/internal/domain"
	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
	repo "github.com/oksasatya/go-slot-booking/internal/domain/repository"
)

// Identity is the caller-asserted identity passed into every core call.
type Identity struct {
	Username    string
	DisplayName string
	Email       string
}

func (i Identity) normalized() Identity {
	return Identity{
		Username:    strings.TrimSpace(i.Username),
		DisplayName: strings.TrimSpace(i.DisplayName),
		Email:       strings.TrimSpace(i.Email),
	}
}

type IdentityService struct {
	Users  repo.UserRepository
	Logger *logrus.Logger
}

func NewIdentityService(users repo.UserRepository, logger *logrus.Logger) *IdentityService {
	return &IdentityService{Users: users, Logger: orDiscard(logger)}
}

// Resolve maps an identity to its stored user, creating it on first contact
// and backfilling a missing email. Username uniqueness is enforced by the
// store; losing a create race falls back to a lookup.
func (s *IdentityService) Resolve(ctx context.Context, id Identity) (*entity.User, error) {
	id = id.normalized()
	if id.Username == "" {
		return nil, domain.NewValidationError("username is required")
	}

	u, err := s.Users.GetByUsername(ctx, id.Username)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		u, err = s.create(ctx, id)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, s.internal("lookup user failed", err, logrus.Fields{"username": id.Username})
	}

	if u.Email == nil && id.Email != "" {
		updated, err := s.Users.BackfillEmail(ctx, u.ID, id.Email)
		if err != nil {
			return nil, s.internal("backfill email failed", err, logrus.Fields{"user_id": u.ID})
		}
		s.Logger.WithField("username", u.Username).Debug("email backfilled")
		u = updated
	}
	return u, nil
}

func (s *IdentityService) create(ctx context.Context, id Identity) (*entity.User, error) {
	u := &entity.User{Username: id.Username, DisplayName: id.DisplayName}
	if u.DisplayName == "" {
		u.DisplayName = id.Username
	}
	if id.Email != "" {
		email := id.Email
		u.Email = &email
	}

	created, err := s.Users.CreateIfAbsent(ctx, u)
	if err != nil {
		return nil, s.internal("create user failed", err, logrus.Fields{"username": id.Username})
	}
	if created {
		s.Logger.WithField("username", u.Username).Info("user created")
		return u, nil
	}

	existing, err := s.Users.GetByUsername(ctx, id.Username)
	if err != nil {
		return nil, s.internal("lookup user after create race failed", err, logrus.Fields{"username": id.Username})
	}
	return existing, nil
}

func (s *IdentityService) internal(msg string, err error, fields logrus.Fields) error {
	s.Logger.WithError(err).WithFields(fields).Error(msg)
	return domain.NewInternalError(msg, err)
}
