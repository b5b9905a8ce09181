package notification

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/pkg/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Transport sends one rendered message to one address. The returned id
// identifies the accepted message for logging; transports impose their own
// delivery timeouts.
type Transport interface {
	Send(to string, variant Kind, data ViewData) (string, error)
}

// ViewData is the template input for every mail variant
type ViewData struct {
	RecipientName string
	EventTitle    string
	StartTime     time.Time
	EndTime       time.Time
	Changes       []ChangeRow
}

var subjects = map[Kind]string{
	KindApproved:   "Event approved: %s",
	KindChanged:    "Event updated: %s",
	KindReapproved: "Event re-approved: %s",
	KindReminder:   "Upcoming event: %s",
}

var bodyTemplate = template.Must(template.New("mail").Parse(`Hello {{.RecipientName}},

{{if eq .Variant "approved" -}}
The event "{{.EventTitle}}" has been approved.
{{- else if eq .Variant "changed" -}}
The event "{{.EventTitle}}" has been updated.
{{- else if eq .Variant "reapproved" -}}
The event "{{.EventTitle}}" has been re-approved after changes.
{{- else -}}
The event "{{.EventTitle}}" is coming up.
{{- end}}

When: {{.Start}} - {{.End}}
{{- if .Changes}}

Changes:
{{- range .Changes}}
  {{.Field}}: {{.Old}} -> {{.New}}
{{- end}}
{{- end}}
`))

type bodyContext struct {
	RecipientName string
	EventTitle    string
	Variant       string
	Start         string
	End           string
	Changes       []ChangeRow
}

func renderBody(variant Kind, data ViewData) (string, error) {
	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, bodyContext{
		RecipientName: data.RecipientName,
		EventTitle:    data.EventTitle,
		Variant:       string(variant),
		Start:         data.StartTime.Format("2006-01-02 15:04"),
		End:           data.EndTime.Format("2006-01-02 15:04"),
		Changes:       data.Changes,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// smtpTransport delivers mail over SMTP via gomail
type smtpTransport struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

// NewSMTPTransport creates an SMTP-backed mail transport
func NewSMTPTransport(cfg config.SMTPConfig) Transport {
	return &smtpTransport{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.FromAddress,
		name:   cfg.FromName,
	}
}

func (t *smtpTransport) Send(to string, variant Kind, data ViewData) (string, error) {
	subjectFmt, ok := subjects[variant]
	if !ok {
		return "", fmt.Errorf("unsupported mail variant: %s", variant)
	}

	body, err := renderBody(variant, data)
	if err != nil {
		return "", fmt.Errorf("failed to render mail body: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", t.from, t.name)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf(subjectFmt, data.EventTitle))
	m.SetBody("text/plain", body)

	messageID := uuid.NewString()
	m.SetHeader("Message-Id", fmt.Sprintf("<%s@%s>", messageID, t.from))

	if err := t.dialer.DialAndSend(m); err != nil {
		return "", err
	}
	return messageID, nil
}

// logTransport only logs what it would send. Used when SMTP is not configured.
type logTransport struct {
	logger *logrus.Logger
}

// NewLogTransport creates a transport that records sends without delivering
func NewLogTransport(logger *logrus.Logger) Transport {
	return &logTransport{logger: logger}
}

func (t *logTransport) Send(to string, variant Kind, data ViewData) (string, error) {
	t.logger.WithFields(logrus.Fields{
		"to":      to,
		"variant": variant,
		"event":   data.EventTitle,
	}).Info("Would send event notification")
	return uuid.NewString(), nil
}
