package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Subject and Text are rendered by the producer; HTML is optional.
type EmailJob struct {
	To       string `json:"to"`
	Subject  string `json:"subject,omitempty"`
	Text     string `json:"text,omitempty"`
	HTML     string `json:"html,omitempty"`
	Template string `json:"template,omitempty"` // e.g. "booking_confirmed", informational only
}
