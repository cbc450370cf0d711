package helpers

import (
	"errors"
	"strings"

	"github.com/oksasatya/go-slot-booking/pkg/mailer"
)

var ErrEmptyRecipient = errors.New("email job has no recipient")

// NormalizeEmailJob trims a decoded job and fills a fallback subject.
// Jobs without a recipient or a body cannot be delivered.
func NormalizeEmailJob(job *mailer.EmailJob) error {
	job.To = strings.TrimSpace(job.To)
	job.Subject = strings.TrimSpace(job.Subject)
	if job.To == "" {
		return ErrEmptyRecipient
	}
	if job.Subject == "" {
		job.Subject = SubjectForTemplate(job.Template)
	}
	if strings.TrimSpace(job.Text) == "" && strings.TrimSpace(job.HTML) == "" {
		return errors.New("email job has no body")
	}
	return nil
}

func SubjectForTemplate(name string) string {
	switch strings.ToLower(name) {
	case "booking_confirmed":
		return "Your booking is confirmed"
	case "booking_received":
		return "New booking on your meeting"
	default:
		return "Notification"
	}
}
