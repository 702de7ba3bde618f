package staffdeck

import "context"

// Mailer delivers transactional email. Password reset links depend on
// delivery succeeding; confirmation notices do not.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// logMailer writes outgoing mail to the logger instead of a provider.
// Used in development and as the fallback when no SendGrid key is
// configured.
type logMailer struct {
	logger Logger
}

func NewLogMailer(logger Logger) Mailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &logMailer{logger: logger}
}

func (m *logMailer) Send(_ context.Context, to, subject, html string) error {
	m.logger.Info("mail (log only) to=%s subject=%q body=%s", to, subject, html)
	return nil
}
