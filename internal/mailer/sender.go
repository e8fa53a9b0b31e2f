package mailer

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/relaybot/sheetmail/internal/domain"
)

// Sender submits one email and reports the outcome. Implementations never
// return an error: every failure is captured in SendResult.ErrorDetail so
// the processor can keep driving the queue forward.
//
// Mocking this interface in tests gives full control over send behaviour
// without opening real SMTP connections.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) domain.SendResult
}

// SMTPSender submits mail over an implicit-TLS connection (the dialer
// negotiates TLS directly on port 465). The connection is opened and
// released within each Send call, on every exit path.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func NewSMTPSender(host string, port int, from, password string, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, from, password),
		from:   from,
		logger: logger,
	}
}

// Send builds a UTF-8 HTML message and transmits it. The context parameter
// keeps the boundary uniform; the round trip itself is bounded by the SMTP
// dialer, not the context.
func (s *SMTPSender) Send(_ context.Context, to, subject, htmlBody string) domain.SendResult {
	s.logger.Info("submitting mail", zap.String("to", to))

	// gomail rejects a blank or unparseable recipient client-side before
	// any server round trip; report those the way a server refusal reads
	// rather than leaking "gomail: invalid address".
	if strings.TrimSpace(to) == "" {
		s.logger.Warn("mail submission failed", zap.String("to", to), zap.String("detail", emptyRecipientDetail))
		return domain.SendResult{ErrorDetail: emptyRecipientDetail}
	}
	if _, err := mail.ParseAddress(to); err != nil {
		s.logger.Warn("mail submission failed", zap.String("to", to), zap.String("detail", malformedAddressDetail))
		return domain.SendResult{ErrorDetail: malformedAddressDetail}
	}

	msg := gomail.NewMessage() // UTF-8 charset by default
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(msg); err != nil {
		s.logger.Warn("mail submission failed", zap.String("to", to), zap.Error(err))
		return domain.SendResult{ErrorDetail: Classify(err)}
	}

	s.logger.Info("mail sent", zap.String("to", to))
	return domain.SendResult{Success: true}
}

// compile-time check that SMTPSender implements Sender
var _ Sender = (*SMTPSender)(nil)
