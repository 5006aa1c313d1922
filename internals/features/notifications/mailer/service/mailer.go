// file: internals/features/notifications/mailer/service/mailer.go
package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"

	"gorm.io/gorm"
	gomail "gopkg.in/gomail.v2"

	"athletiq_backend/internals/configs"
	paymentService "athletiq_backend/internals/features/finance/payments/service"
)

/* =========================================================
   SMTP sender
========================================================= */

// Sender delivers one rendered message.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

type SMTPSender struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func NewSMTPSenderFromEnv() *SMTPSender {
	port, err := strconv.Atoi(configs.GetEnv("SMTP_PORT", "587"))
	if err != nil {
		port = 587
	}
	return &SMTPSender{
		Host: configs.GetEnv("SMTP_HOST"),
		Port: port,
		User: configs.GetEnv("SMTP_USER"),
		Pass: configs.GetEnv("SMTP_PASS"),
		From: configs.GetEnv("SMTP_FROM", "noreply@athletiq.app"),
	}
}

func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

/* =========================================================
   Templates
========================================================= */

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<h2>Registration confirmed</h2>
<p>Hi {{.Name}},</p>
<p>Your payment of <strong>{{.Amount}}</strong> was received. {{.LineCount}} registration(s) are confirmed.</p>
<p>Reference: {{.PaymentID}}</p>
<p>See you on the court!</p>
`))

type confirmationData struct {
	Name      string
	Amount    string
	LineCount int
	PaymentID string
}

func formatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(cents)/100, currency)
}

/* =========================================================
   Service
========================================================= */

type Service struct {
	DB     *gorm.DB
	Sender Sender
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Sender: NewSMTPSenderFromEnv()}
}

// SendConfirmation renders and delivers the post-payment email. Callers treat
// failures as best-effort; nothing here retries.
func (s *Service) SendConfirmation(ctx context.Context, email paymentService.ConfirmationEmail) error {
	var user struct {
		UserName string
		Email    string
	}
	err := s.DB.WithContext(ctx).
		Table("users").
		Where("id = ?", email.UserID).
		Select("user_name, email").
		Take(&user).Error
	if err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}

	var body bytes.Buffer
	err = confirmationTmpl.Execute(&body, confirmationData{
		Name:      user.UserName,
		Amount:    formatAmount(email.AmountCents, email.Currency),
		LineCount: email.LineCount,
		PaymentID: email.PaymentID.String(),
	})
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	return s.Sender.Send(user.Email, "Your registration is confirmed", body.String())
}

// SendRaw delivers an already-written broadcast message to one recipient.
func (s *Service) SendRaw(to, subject, htmlBody string) error {
	return s.Sender.Send(to, subject, htmlBody)
}
