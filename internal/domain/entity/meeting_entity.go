package entity

import "time"

// Meeting is created once together with all of its slots and never
// mutated afterwards. ID doubles as the public booking token.
type Meeting struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	CreatedByID string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TimeSlot is a claimable interval. BookedByID and BookedAt are set
// together and never revert to nil.
type TimeSlot struct {
	ID         string     `json:"id"`
	MeetingID  string     `json:"meetingId"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    time.Time  `json:"endTime"`
	BookedByID *string    `json:"-"`
	BookedAt   *time.Time `json:"bookedAt"`
}

// IsBooked reports whether the slot has left the open state.
func (s TimeSlot) IsBooked() bool {
	return s.BookedByID != nil
}

// SlotView is a slot together with its booker identity, if any.
type SlotView struct {
	TimeSlot
	BookedBy *UserRef `json:"bookedBy"`
}

// MeetingDetail is the full meeting aggregate: slots ordered by start time.
type MeetingDetail struct {
	Meeting
	CreatedBy UserRef    `json:"createdBy"`
	Slots     []SlotView `json:"slots"`
}

// SlotContext is a slot loaded together with its parent meeting and the
// meeting creator, as needed by the booking flow.
type SlotContext struct {
	Slot    TimeSlot
	Meeting Meeting
	Creator UserRef
}
