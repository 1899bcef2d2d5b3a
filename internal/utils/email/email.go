package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/aDolgosheev/bank-card-management/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendCardBlockedNotice notifies a cardholder that their card has been blocked
func (s *Sender) SendCardBlockedNotice(to, cardholderName, maskedNumber string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Card Blocked"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your card %s has been blocked at your request on %s.\n"+
			"If you did not request this, please contact support immediately.\n"+
			"\nBest regards,\nBank Card Management",
		cardholderName, maskedNumber, time.Now().Format("2006-01-02 15:04:05"),
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
