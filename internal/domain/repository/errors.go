package repository

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrSlotTaken       = errors.New("slot already booked")
	ErrDuplicateBooker = errors.New("user already holds a slot in this meeting")
	ErrMeetingExists   = errors.New("meeting id already exists")
)
