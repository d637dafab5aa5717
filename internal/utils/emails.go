package utils

import (
	"log"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SendEmail sends an HTML email using the configured SMTP account. A mailer
// without credentials silently skips sending, so dev setups work offline.
func (m Mailer) SendEmail(to string, subject string, body string) error {
	if m.Username == "" {
		log.Printf("SMTP not configured, skipping email to %s", to)
		return nil
	}

	mailer := gomail.NewMessage()
	mailer.SetHeader("From", m.Username)
	mailer.SetHeader("To", to)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)

	if err := dialer.DialAndSend(mailer); err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	log.Printf("Email sent successfully to %s", to)
	return nil
}
