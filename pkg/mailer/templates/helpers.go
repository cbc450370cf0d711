package templates

import (
	"strings"
	"time"
)

// Option pattern
type Option func(*BookingData)

func WithAppName(name string) Option { return func(d *BookingData) { d.AppName = name } }

func WithSlot(start, end time.Time) Option {
	return func(d *BookingData) {
		d.Start = start.UTC()
		d.End = end.UTC()
	}
}

// WithMeetingURL builds the public link <base>/meeting/<id>. An empty base
// leaves the link out.
func WithMeetingURL(base, meetingID string) Option {
	return func(d *BookingData) {
		base = strings.TrimRight(strings.TrimSpace(base), "/")
		if base == "" || meetingID == "" {
			return
		}
		d.MeetingURL = base + "/meeting/" + meetingID
	}
}

func NewBookingData(opts ...Option) BookingData {
	var d BookingData
	for _, o := range opts {
		o(&d)
	}
	return d
}
