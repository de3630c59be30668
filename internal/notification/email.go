package notification

import (
	"context"
	"fmt"
	"html"

	"github.com/tendant/simple-signup/pkg/domain"
	"gopkg.in/gomail.v2"
)

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type EmailService struct {
	config EmailConfig
	send   func(m ...*gomail.Message) error
}

func NewEmailService(config EmailConfig) *EmailService {
	dialer := gomail.NewDialer(config.Host, config.Port, config.User, config.Password)
	return &EmailService{config: config, send: dialer.DialAndSend}
}

// SendWelcome mails a new member their public address.
func (s *EmailService) SendWelcome(_ context.Context, user *domain.User) error {
	if err := s.send(s.welcomeMessage(user)); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *EmailService) welcomeMessage(user *domain.User) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.From, s.config.FromName)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", fmt.Sprintf("Welcome to %s, %s!", s.config.FromName, user.Nickname))

	body := fmt.Sprintf(`<html><body>
		<h2>Welcome, %s!</h2>
		<p>Your account has been created.</p>
		<p>Your page is ready at <strong>%s</strong>.</p>
	</body></html>`, html.EscapeString(user.Nickname), html.EscapeString(user.AddressSlug))
	m.SetBody("text/html", body)
	return m
}
