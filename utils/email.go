package utils

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

// SendNotificationEmail delivers an urgent notification by email. Callers
// treat failures as best-effort: the in-app notification is the durable
// record.
func SendNotificationEmail(toEmail, title, message string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	if smtpHost == "" || toEmail == "" {
		return fmt.Errorf("email delivery not configured")
	}

	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = smtpUser
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", title)
	m.SetBody("text/plain", message)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}
