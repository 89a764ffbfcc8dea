package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// emailAPI is the part of the Resend client used to send mail.
type emailAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailSender delivers alerts through the Resend email API.
type EmailSender struct {
	emails emailAPI
	from   string
	to     []string
}

// NewEmailSender creates an [EmailSender] authenticated with apiKey.
func NewEmailSender(apiKey, from string, to []string) (*EmailSender, error) {
	if apiKey == "" {
		return nil, errors.New("email api key is required")
	}
	if from == "" || len(to) == 0 {
		return nil, errors.New("email sender and recipients are required")
	}

	client := resend.NewClient(apiKey)
	return newEmailSender(client.Emails, from, to), nil
}

func newEmailSender(api emailAPI, from string, to []string) *EmailSender {
	return &EmailSender{
		emails: api,
		from:   from,
		to:     append([]string(nil), to...),
	}
}

// Name implements [Sender].
func (s *EmailSender) Name() string {
	return "email"
}

// Send implements [Sender].
func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	resp, err := s.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      s.to,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	if resp == nil || resp.Id == "" {
		return errors.New("resend: empty response")
	}
	return nil
}
