package application

import "expvar"

// Counters published on /debug/vars.
var (
	meetingsCreated     = expvar.NewInt("meetings_created")
	bookingsConfirmed   = expvar.NewInt("bookings_confirmed")
	bookingConflicts    = expvar.NewInt("booking_conflicts")
	notificationsFailed = expvar.NewInt("notifications_failed")
)
