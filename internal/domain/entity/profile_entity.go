package entity

import "time"

// Slot roles in an availability listing.
const (
	RoleAttending = "attending"
	RoleHosting   = "hosting"
)

// BookedSlot is a slot the user claimed, with its meeting and host.
type BookedSlot struct {
	SlotID    string    `json:"slotId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	BookedAt  time.Time `json:"bookedAt"`
	Meeting   Meeting   `json:"meeting"`
	Host      UserRef   `json:"host"`
}

// UserProfile aggregates what a user hosts and attends.
type UserProfile struct {
	DisplayName    string       `json:"displayName"`
	Username       string       `json:"username"`
	Email          *string      `json:"email"`
	HostedMeetings []Meeting    `json:"hostedMeetings"`
	BookedSlots    []BookedSlot `json:"bookedSlots"`
}

// BusySlot is an interval during which the user is committed. Role tells
// whether the user attends it or hosts it; With is the other party.
type BusySlot struct {
	SlotID       string    `json:"slotId"`
	MeetingID    string    `json:"meetingId"`
	MeetingTitle string    `json:"meetingTitle"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Role         string    `json:"role"`
	With         UserRef   `json:"with"`
}
