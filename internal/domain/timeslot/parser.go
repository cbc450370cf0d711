// Package timeslot turns a host-local calendar day and a human range such as
// "09:00 AM - 10:00 AM" into absolute UTC instants.
//
// The offset follows the browser convention (Date.getTimezoneOffset): it is
// the number of minutes to add to the local wall clock, read as if it were
// UTC, to obtain true UTC. A host in UTC+05:30 sends -330; a host in UTC-05:00
// sends 300. Flipping the sign makes host and viewer disagree by twice the
// offset.
package timeslot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oksasatya/go-slot-booking/internal/domain"
)

// DateLayout is the wire format of a calendar day.
const DateLayout = "2006-01-02"

const rangeSeparator = " - "

// Range is an absolute [Start, End) interval in UTC.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseDate normalizes a YYYY-MM-DD calendar day to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domain.NewValidationError(fmt.Sprintf("date %q must be YYYY-MM-DD", s))
	}
	return d.UTC(), nil
}

// Parse converts rangeText on localDate into UTC instants. utcOffsetMinutes
// nil selects the legacy mode where the wall clock is taken literally as UTC.
func Parse(localDate time.Time, rangeText string, utcOffsetMinutes *int) (Range, error) {
	offset := 0
	if utcOffsetMinutes != nil {
		offset = *utcOffsetMinutes
	}
	return ParseWithOffset(localDate, rangeText, offset)
}

// ParseWithOffset is Parse with an explicit offset in minutes.
func ParseWithOffset(localDate time.Time, rangeText string, utcOffsetMinutes int) (Range, error) {
	parts := strings.Split(strings.TrimSpace(rangeText), rangeSeparator)
	if len(parts) != 2 {
		return Range{}, domain.NewInvalidTimeFormat(fmt.Sprintf("time range %q must look like \"09:00 AM - 10:00 AM\"", rangeText))
	}

	startH, startM, err := parseClock(parts[0])
	if err != nil {
		return Range{}, err
	}
	endH, endM, err := parseClock(parts[1])
	if err != nil {
		return Range{}, err
	}

	y, mo, d := localDate.Date()
	shift := time.Duration(utcOffsetMinutes) * time.Minute
	r := Range{
		Start: time.Date(y, mo, d, startH, startM, 0, 0, time.UTC).Add(shift),
		End:   time.Date(y, mo, d, endH, endM, 0, 0, time.UTC).Add(shift),
	}
	if !r.End.After(r.Start) {
		return Range{}, domain.NewInvalidTimeFormat(fmt.Sprintf("time range %q ends before it starts", rangeText))
	}
	return r, nil
}

// parseClock reads "<H>:<MM> <AM|PM>" and returns the 24-hour clock.
func parseClock(fragment string) (int, int, error) {
	fields := strings.Fields(fragment)
	if len(fields) != 2 {
		return 0, 0, domain.NewInvalidTimeFormat(fmt.Sprintf("time %q must be \"<H>:<MM> <AM|PM>\"", fragment))
	}

	hm := strings.Split(fields[0], ":")
	if len(hm) != 2 {
		return 0, 0, domain.NewInvalidTimeFormat(fmt.Sprintf("time %q must be \"<H>:<MM>\"", fields[0]))
	}
	// Atoi alone would accept signs such as "+5".
	if !isDigits(hm[0]) {
		return 0, 0, domain.NewInvalidTimeFormat(fmt.Sprintf("hour %q must be a number from 1 to 12", hm[0]))
	}
	if !isDigits(hm[1]) {
		return 0, 0, domain.NewInvalidTimeFormat(fmt.Sprintf("minute %q must be a number from 00 to 59", hm[1]))
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil || hour < 1 || hour > 12 {
		return 0, 0, domain.NewInvalidTimeFormat(fmt.Sprintf("hour %q must be a number from 1 to 12", hm[0]))
	}
	if len(hm[1]) != 2 {
		return 0, 0, domain.NewInvalidTimeFormat(fmt.Sprintf("minute %q must have two digits", hm[1]))
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, domain.NewInvalidTimeFormat(fmt.Sprintf("minute %q must be a number from 00 to 59", hm[1]))
	}

	switch strings.ToUpper(fields[1]) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, 0, domain.NewInvalidTimeFormat(fmt.Sprintf("period %q must be AM or PM", fields[1]))
	}
	return hour, minute, nil
}

// isDigits reports whether s is non-empty and only ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Format renders two wall-clock times in the notation Parse accepts.
func Format(start, end time.Time) string {
	return start.Format("03:04 PM") + rangeSeparator + end.Format("03:04 PM")
}
