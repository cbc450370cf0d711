package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
)

// MeetingRepository owns the meeting + slot aggregate.
type MeetingRepository interface {
	// CreateWithSlots stores the meeting and all slots atomically and fills
	// the generated slot IDs.
	CreateWithSlots(ctx context.Context, m *entity.Meeting, slots []entity.TimeSlot) error
	// GetDetail returns the aggregate with slots ordered by start time.
	GetDetail(ctx context.Context, meetingID string) (*entity.MeetingDetail, error)
	ListHostedBy(ctx context.Context, userID string) ([]entity.Meeting, error)
}

// SlotRepository drives the booking state machine.
type SlotRepository interface {
	GetContext(ctx context.Context, slotID string) (*entity.SlotContext, error)
	HasBookingInMeeting(ctx context.Context, meetingID, userID string) (bool, error)
	// Claim books the slot for userID only if it is still open, as a single
	// atomic step. Returns ErrSlotTaken when another claimant won and
	// ErrDuplicateBooker when the user already holds a slot of the meeting.
	Claim(ctx context.Context, slotID, userID string, at time.Time) (*entity.TimeSlot, error)
	ListBookedBy(ctx context.Context, userID string) ([]entity.BookedSlot, error)
	// ListBusy returns the slots userID attends plus the slots of meetings
	// they host that others claimed, for meetings dated day.
	ListBusy(ctx context.Context, userID string, day time.Time) ([]entity.BusySlot, error)
}
