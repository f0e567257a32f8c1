package mailer

import (
	"fmt"

	"quickbite-api/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email. Delivery is synchronous; a failing
// provider surfaces as an error to the caller.
type Mailer interface {
	SendOTPEmail(toEmail, toName, code string) error
	SendPasswordResetEmail(toEmail, toName, token string) error
}

// SMTPMailer implements Mailer over configured SMTP via gomail.
type SMTPMailer struct {
	dialer     *gomail.Dialer
	from       string
	senderName string
	logger     *zap.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer:     gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:       cfg.From,
		senderName: cfg.SenderName,
		logger:     log.Named("mailer"),
	}
}

func (m *SMTPMailer) SendOTPEmail(toEmail, toName, code string) error {
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Your verification code is: <b>%s</b></p>
<p>This code will expire in 10 minutes.</p>
<p>If you did not request this, please ignore this email.</p>`, toName, code)
	return m.send(toEmail, "Verify Your Email Address", body)
}

func (m *SMTPMailer) SendPasswordResetEmail(toEmail, toName, token string) error {
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Your password reset code is: <b>%s</b></p>
<p>This code will expire in 1 hour.</p>
<p>If you did not request a password reset, please ignore this email.</p>`, toName, token)
	return m.send(toEmail, "Reset Your Password", body)
}

func (m *SMTPMailer) send(toEmail, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.senderName)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("failed to send email",
			zap.String("to", toEmail),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("send email: %w", err)
	}
	m.logger.Info("email sent", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}
