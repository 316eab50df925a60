package service

import (
	"bytes"
	"embed"
	"text/template"
	"time"

	"healthoasis/config"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	mailTimeout   = 10 * time.Second
	mailAttempts  = 3
	mailRetryWait = 2 * time.Second
)

// MailClient is satisfied by *mail.Client.
type MailClient interface {
	DialAndSend(...*mail.Msg) error
}

type Mailer interface {
	Send(recipient, templateName string, data any) error
}

type SMTPMailer struct {
	client    MailClient
	from      string
	retryWait time.Duration
	log       logrus.FieldLogger
}

// NewSMTPMailer returns nil when no SMTP host is configured.
func NewSMTPMailer(cfg config.SMTPConfig, log logrus.FieldLogger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, nil
	}
	opts := []mail.Option{
		mail.WithTimeout(mailTimeout),
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}
	return &SMTPMailer{client: client, from: cfg.From, retryWait: mailRetryWait, log: log}, nil
}

// Send renders templates/<templateName>.tmpl and delivers it, retrying
// transient failures.
func (m *SMTPMailer) Send(recipient, templateName string, data any) error {
	ts, err := template.ParseFS(templateFS, "templates/"+templateName+".tmpl")
	if err != nil {
		return err
	}
	subject := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(subject, "subject", data); err != nil {
		return err
	}
	body := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(body, "plainBody", data); err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.To(recipient); err != nil {
		return err
	}
	if err := msg.From(m.from); err != nil {
		return err
	}
	msg.Subject(subject.String())
	msg.SetBodyString(mail.TypeTextPlain, body.String())

	for i := 1; i <= mailAttempts; i++ {
		if err = m.client.DialAndSend(msg); err == nil {
			return nil
		}
		m.log.WithError(err).WithField("attempt", i).Warn("smtp send failed")
		if i != mailAttempts {
			time.Sleep(m.retryWait)
		}
	}
	return err
}
