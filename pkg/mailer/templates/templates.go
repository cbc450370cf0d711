package templates

import (
	"bytes"
	"embed"
	"fmt"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// BookingData defines the fields available to booking templates.
type BookingData struct {
	AppName string `json:"AppName"`

	RecipientName string `json:"RecipientName"`

	ClaimantName     string `json:"ClaimantName"`
	ClaimantUsername string `json:"ClaimantUsername"`
	ClaimantEmail    string `json:"ClaimantEmail"`
	HostName         string `json:"HostName"`

	MeetingID          string `json:"MeetingID"`
	MeetingTitle       string `json:"MeetingTitle"`
	MeetingDescription string `json:"MeetingDescription"`
	MeetingURL         string `json:"MeetingURL"`

	Start time.Time `json:"Start"`
	End   time.Time `json:"End"`
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

var funcs = texttpl.FuncMap{
	"formatTime": func(t time.Time, layout string) string { return t.UTC().Format(layout) },
	"upper":      strings.ToUpper,
	"default":    defaultFn,
}

// Template names.
const (
	BookingConfirmed = "booking_confirmed" // to the claimant
	BookingReceived  = "booking_received"  // to the meeting host
)

func renderFile(filename string, data any) (string, error) {
	tpl, err := texttpl.New(filename).Funcs(funcs).ParseFS(FS, filename)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", filename, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render renders <name>.subject.tmpl and <name>.text.tmpl.
func Render(name string, data any) (subject string, text string, err error) {
	subject, err = renderFile(name+".subject.tmpl", data)
	if err != nil {
		return "", "", err
	}
	text, err = renderFile(name+".text.tmpl", data)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(subject), text, nil
}
