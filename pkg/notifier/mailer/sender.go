// Package mailer provides a notifier.Dispatcher that emails the operator
// directly over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"leadintake/pkg/domain"
	"leadintake/pkg/notifier"

	"gopkg.in/gomail.v2"
)

var body = template.Must(template.New("lead").Parse(`<h2>New lead</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
<p><strong>Phone:</strong> {{.Phone}}</p>
<p><strong>Interested in:</strong> {{if .InterestedTraining}}{{.InterestedTraining}}{{else}}not specified{{end}}</p>
`)) //nolint: gochecknoglobals

// Options configure the SMTP connection.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the sender address on every alert.
	From string
}

// Dialer sends composed messages. *gomail.Dialer implements it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Sender renders and sends lead alerts.
type Sender struct {
	dialer Dialer
	from   string
}

// New creates a Sender connected through a gomail dialer.
func New(opts Options) *Sender {
	return NewWithDialer(gomail.NewDialer(opts.Host, opts.Port, opts.Username, opts.Password), opts.From)
}

// NewWithDialer creates a Sender using d.
func NewWithDialer(d Dialer, from string) *Sender {
	return &Sender{dialer: d, from: from}
}

// Compose builds the alert message for n.
func (s *Sender) Compose(n domain.Notification) (*gomail.Message, error) {
	var buf bytes.Buffer
	if err := body.Execute(&buf, n); err != nil {
		return nil, fmt.Errorf("could not render lead email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", n.NotificationEmail)
	m.SetHeader("Reply-To", n.Email)
	m.SetHeader("Subject", "New lead: "+n.Name)
	m.SetBody("text/html", buf.String())

	return m, nil
}

// Invoke sends the alert. functionName is not used by SMTP delivery.
func (s *Sender) Invoke(_ context.Context, _ string, n domain.Notification) error {
	if n.NotificationEmail == "" {
		return fmt.Errorf("no recipient for lead notification")
	}

	m, err := s.Compose(n)
	if err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("could not send lead email: %w", err)
	}

	return nil
}

var _ notifier.Dispatcher = (*Sender)(nil)
