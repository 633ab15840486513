package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// EmailSender sends email through the SendGrid v3 API.
type EmailSender struct {
	key  string
	host string
	from *sgmail.Email
	now  func() time.Time
}

func NewEmailSender(key, fromName, fromEmail string) *EmailSender {
	return &EmailSender{
		key:  key,
		host: sendgridHost,
		from: sgmail.NewEmail(fromName, fromEmail),
		now:  time.Now,
	}
}

func (s *EmailSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.RecipientName, msg.Recipient))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Body))
	return m
}

func (s *EmailSender) Send(ctx context.Context, msg Message) (Outcome, error) {
	if msg.Channel != ChannelEmail {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnsupportedChannel, msg.Channel)
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	req := sendgrid.GetRequest(s.key, sendgridEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := rest.SendWithContext(ctx, req)
	if err != nil {
		return Outcome{}, fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return Outcome{}, fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return Outcome{Provider: "sendgrid", SentAt: s.now()}, nil
}
