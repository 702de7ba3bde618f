package staffdeck

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridMailer delivers mail through the SendGrid v3 API.
type SendgridMailer struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

func NewSendgridMailer(apiKey, fromName, fromAddr string) *SendgridMailer {
	return &SendgridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

func (m *SendgridMailer) Send(ctx context.Context, to, subject, html string) error {
	from := mail.NewEmail(m.fromName, m.fromAddr)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), html, html)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "sendgrid delivery failed")
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return goerrors.New("sendgrid delivery rejected", goerrors.CategoryOperation).
			WithMetadata(map[string]any{"status_code": response.StatusCode})
	}
	return nil
}
