package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_BookingConfirmed(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	data := NewBookingData(
		WithAppName("Slots"),
		WithSlot(start, start.Add(30*time.Minute)),
		WithMeetingURL("https://slots.example.com/", "abcd-efgh-ijkl"),
	)
	data.RecipientName = "Ana"
	data.HostName = "Hugo"
	data.MeetingTitle = "Design review"

	subject, text, err := Render(BookingConfirmed, data)
	require.NoError(t, err)
	assert.Equal(t, "Booking confirmed: Design review", subject)
	assert.Contains(t, text, "Hi Ana,")
	assert.Contains(t, text, "hosted by Hugo")
	assert.Contains(t, text, "Wed, 01 May 2024 09:00 - 09:30 UTC")
	assert.Contains(t, text, "https://slots.example.com/meeting/abcd-efgh-ijkl")
	assert.Contains(t, text, "-- Slots")
}

func TestRender_BookingReceived(t *testing.T) {
	data := NewBookingData(WithSlot(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
	data.ClaimantName = "Ana"
	data.ClaimantUsername = "ana"
	data.ClaimantEmail = "ana@example.com"
	data.MeetingTitle = "Office hours"

	subject, text, err := Render(BookingReceived, data)
	require.NoError(t, err)
	assert.Equal(t, "Ana booked a slot in Office hours", subject)
	assert.Contains(t, text, "Hi there,")
	assert.Contains(t, text, "(@ana, ana@example.com)")
	assert.NotContains(t, text, "Meeting page:")
	assert.Contains(t, text, "-- Slot Booking")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, err := Render("nope", BookingData{})
	assert.Error(t, err)
}
