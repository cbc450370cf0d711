package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-slot-booking/internal/domain"
	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
	repo "github.com/oksasatya/go-slot-booking/internal/domain/repository"
	"github.com/oksasatya/go-slot-booking/internal/domain/timeslot"
)

// ProfileService serves read-only projections of a user's schedule.
type ProfileService struct {
	Users    repo.UserRepository
	Meetings repo.MeetingRepository
	Slots    repo.SlotRepository
	Logger   *logrus.Logger
}

func NewProfileService(users repo.UserRepository, meetings repo.MeetingRepository, slots repo.SlotRepository, logger *logrus.Logger) *ProfileService {
	return &ProfileService{Users: users, Meetings: meetings, Slots: slots, Logger: orDiscard(logger)}
}

func (s *ProfileService) Profile(ctx context.Context, username string) (*entity.UserProfile, error) {
	u, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}

	hosted, err := s.Meetings.ListHostedBy(ctx, u.ID)
	if err != nil {
		return nil, s.internal("list hosted meetings failed", err, u.Username)
	}
	booked, err := s.Slots.ListBookedBy(ctx, u.ID)
	if err != nil {
		return nil, s.internal("list booked slots failed", err, u.Username)
	}

	return &entity.UserProfile{
		DisplayName:    u.DisplayName,
		Username:       u.Username,
		Email:          u.Email,
		HostedMeetings: hosted,
		BookedSlots:    booked,
	}, nil
}

// Availability lists the intervals on date where the user is committed,
// either attending someone else's meeting or hosting a claimed slot.
func (s *ProfileService) Availability(ctx context.Context, username, date string) ([]entity.BusySlot, error) {
	day, err := timeslot.ParseDate(date)
	if err != nil {
		return nil, err
	}
	u, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}

	busy, err := s.Slots.ListBusy(ctx, u.ID, day)
	if err != nil {
		return nil, s.internal("list busy slots failed", err, u.Username)
	}
	return busy, nil
}

func (s *ProfileService) lookup(ctx context.Context, username string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewValidationError("username is required")
	}
	u, err := s.Users.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, domain.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, s.internal("lookup user failed", err, username)
	}
	return u, nil
}

func (s *ProfileService) internal(msg string, err error, username string) error {
	s.Logger.WithError(err).WithField("username", username).Error(msg)
	return domain.NewInternalError(msg, err)
}
