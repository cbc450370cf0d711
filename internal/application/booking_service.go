package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-slot-booking/internal/domain"
	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
	repo "github.com/oksasatya/go-slot-booking/internal/domain/repository"
	mailtpl "github.com/oksasatya/go-slot-booking/pkg/mailer/templates"
)

type BookInput struct {
	SlotID      string
	Username    string
	DisplayName string
	Email       string
}

// BookingResult is returned once the claim is durable. Notifications yields
// delivery failures and is closed when dispatch finishes.
type BookingResult struct {
	Slot          entity.TimeSlot
	Meeting       entity.Meeting
	Claimant      entity.UserRef
	Host          entity.UserRef
	Notifications <-chan error
}

type BookingPolicy struct {
	// BlockHostSelfBooking rejects the creator claiming a slot of their own meeting.
	BlockHostSelfBooking bool
}

// MailSettings feed the notification templates.
type MailSettings struct {
	AppName       string
	PublicBaseURL string
}

type BookingService struct {
	Slots      repo.SlotRepository
	Identity   *IdentityService
	Cache      MeetingCache
	Dispatcher *Dispatcher
	Policy     BookingPolicy
	Mail       MailSettings
	Logger     *logrus.Logger

	validate *validator.Validate
	now      func() time.Time
}

func NewBookingService(slots repo.SlotRepository, identity *IdentityService, cache MeetingCache, dispatcher *Dispatcher, policy BookingPolicy, mail MailSettings, logger *logrus.Logger) *BookingService {
	return &BookingService{
		Slots:      slots,
		Identity:   identity,
		Cache:      cache,
		Dispatcher: dispatcher,
		Policy:     policy,
		Mail:       mail,
		Logger:     orDiscard(logger),
		validate:   validator.New(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Book claims an open slot for the caller. The claim is a single
// conditional write in the store; the duplicate check before it only
// produces a friendlier error for the common case.
func (s *BookingService) Book(ctx context.Context, in BookInput) (*BookingResult, error) {
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	claimant, err := s.Identity.Resolve(ctx, Identity{Username: in.Username, DisplayName: in.DisplayName, Email: in.Email})
	if err != nil {
		return nil, err
	}
	log := s.Logger.WithFields(logrus.Fields{"slot_id": in.SlotID, "username": claimant.Username})

	sc, err := s.Slots.GetContext(ctx, in.SlotID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, domain.NewSlotNotFound("slot not found")
	}
	if err != nil {
		return nil, s.internal(log, "load slot failed", err)
	}
	log = log.WithField("meeting_id", sc.Meeting.ID)

	if s.Policy.BlockHostSelfBooking && sc.Creator.ID == claimant.ID {
		bookingConflicts.Add(1)
		return nil, domain.NewConflictError("hosts cannot book slots of their own meeting")
	}

	held, err := s.Slots.HasBookingInMeeting(ctx, sc.Meeting.ID, claimant.ID)
	if err != nil {
		return nil, s.internal(log, "check existing booking failed", err)
	}
	if held {
		bookingConflicts.Add(1)
		return nil, domain.NewDuplicateBooking("you already booked a slot in this meeting")
	}

	claimed, err := s.Slots.Claim(ctx, in.SlotID, claimant.ID, s.now())
	switch {
	case errors.Is(err, repo.ErrSlotTaken):
		bookingConflicts.Add(1)
		log.Info("slot already booked")
		return nil, domain.NewSlotAlreadyBooked("this slot has already been booked")
	case errors.Is(err, repo.ErrDuplicateBooker):
		bookingConflicts.Add(1)
		return nil, domain.NewDuplicateBooking("you already booked a slot in this meeting")
	case errors.Is(err, repo.ErrNotFound):
		return nil, domain.NewSlotNotFound("slot not found")
	case err != nil:
		return nil, s.internal(log, "claim slot failed", err)
	}

	bookingsConfirmed.Add(1)
	log.Info("slot booked")

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, sc.Meeting.ID); err != nil {
			log.WithError(err).Warn("meeting cache invalidation failed")
		}
	}

	res := &BookingResult{
		Slot:     *claimed,
		Meeting:  sc.Meeting,
		Claimant: claimant.Ref(),
		Host:     sc.Creator,
	}
	res.Notifications = s.Dispatcher.Dispatch(ctx, s.compose(log, res)...)
	return res, nil
}

func (s *BookingService) validateInput(in *BookInput) error {
	in.SlotID = strings.TrimSpace(in.SlotID)
	in.Username = strings.TrimSpace(in.Username)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Email = strings.TrimSpace(in.Email)

	var missing []string
	if in.SlotID == "" {
		missing = append(missing, "slot id")
	}
	if in.Username == "" {
		missing = append(missing, "username")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return domain.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	if _, err := uuid.Parse(in.SlotID); err != nil {
		return domain.NewValidationError(fmt.Sprintf("slot id %q is not a valid id", in.SlotID))
	}
	if err := s.validate.Var(in.Email, "email"); err != nil {
		return domain.NewValidationError(fmt.Sprintf("email %q is not a valid address", in.Email))
	}
	return nil
}

// compose renders the claimant confirmation and, when the host has an
// email on file, the host notice. Render failures drop that notification.
func (s *BookingService) compose(log *logrus.Entry, res *BookingResult) []Notification {
	base := mailtpl.NewBookingData(
		mailtpl.WithAppName(s.Mail.AppName),
		mailtpl.WithSlot(res.Slot.StartTime, res.Slot.EndTime),
		mailtpl.WithMeetingURL(s.Mail.PublicBaseURL, res.Meeting.ID),
	)
	base.MeetingID = res.Meeting.ID
	base.MeetingTitle = res.Meeting.Title
	base.MeetingDescription = res.Meeting.Description
	base.ClaimantName = res.Claimant.DisplayName
	base.ClaimantUsername = res.Claimant.Username
	base.HostName = res.Host.DisplayName
	if res.Claimant.HasEmail() {
		base.ClaimantEmail = *res.Claimant.Email
	}

	var notes []Notification
	if res.Claimant.HasEmail() {
		data := base
		data.RecipientName = res.Claimant.DisplayName
		if n, ok := s.render(log, mailtpl.BookingConfirmed, *res.Claimant.Email, data); ok {
			notes = append(notes, n)
		}
	}
	if res.Host.HasEmail() {
		data := base
		data.RecipientName = res.Host.DisplayName
		if n, ok := s.render(log, mailtpl.BookingReceived, *res.Host.Email, data); ok {
			notes = append(notes, n)
		}
	}
	return notes
}

func (s *BookingService) render(log *logrus.Entry, name, to string, data mailtpl.BookingData) (Notification, bool) {
	subject, body, err := mailtpl.Render(name, data)
	if err != nil {
		notificationsFailed.Add(1)
		log.WithError(err).WithField("template", name).Error("render notification failed")
		return Notification{}, false
	}
	return Notification{To: to, Subject: subject, Body: body, Template: name}, true
}

func (s *BookingService) internal(log *logrus.Entry, msg string, err error) error {
	log.WithError(err).Error(msg)
	return domain.NewInternalError(msg, err)
}
