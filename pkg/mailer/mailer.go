package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/go-mail/mail/v2"
)

// The templates are embedded into the binary. Each template file defines
// the "subject", "plainBody" and "htmlBody" named templates.
//
//go:embed "templates"
var templateFS embed.FS

// A file attached to an email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Define a Mailer struct which contains a mail.Dialer instance (used to connect to a
// SMTP server) and the sender information for the emails.
type Mailer struct {
	dialer  *mail.Dialer
	sender  string
	retries int
	backoff time.Duration
}

func New(host string, port int, username, password, sender string) Mailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = 5 * time.Second

	return Mailer{
		dialer:  dialer,
		sender:  sender,
		retries: 3,
		backoff: 500 * time.Millisecond,
	}
}

// Send renders the template file with the dynamic data and sends the email to the
// recipient, with the attachments if any. Sending is retried a few times before
// giving up, unless the context is done first.
func (m Mailer) Send(ctx context.Context, recipient, templateFile string, data interface{}, attachments ...Attachment) error {
	msg, err := m.message(recipient, templateFile, data, attachments...)
	if err != nil {
		return err
	}

	for i := 1; ; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(err, ctxErr)
		}
		err = m.dialer.DialAndSend(msg)
		if err == nil || i >= m.retries {
			return err
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(m.backoff):
		}
	}
}

func (m Mailer) message(recipient, templateFile string, data interface{}, attachments ...Attachment) (*mail.Message, error) {
	// The subject and the plain body are not HTML, so they must not be escaped.
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return nil, err
	}
	htmlTmpl, err := htmltemplate.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return nil, err
	}

	subject := new(bytes.Buffer)
	err = tmpl.ExecuteTemplate(subject, "subject", data)
	if err != nil {
		return nil, err
	}
	plainBody := new(bytes.Buffer)
	err = tmpl.ExecuteTemplate(plainBody, "plainBody", data)
	if err != nil {
		return nil, err
	}
	htmlBody := new(bytes.Buffer)
	err = htmlTmpl.ExecuteTemplate(htmlBody, "htmlBody", data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", recipient)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	for _, a := range attachments {
		msg.AttachReader(a.Filename, bytes.NewReader(a.Data), mail.SetHeader(map[string][]string{
			"Content-Type": {a.ContentType},
		}))
	}

	return msg, nil
}
