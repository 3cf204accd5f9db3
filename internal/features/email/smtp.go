package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, Username: username, Password: password, send: smtp.SendMail}
}

func (s *SMTPSender) Name() string { return "smtp" }

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	headers := []string{
		"From: " + msg.From,
		"To: " + strings.Join(msg.To, ", "),
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	raw := strings.Join(headers, "\r\n") + "\r\n\r\n" + msg.HTMLBody

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	return s.send(addr, auth, msg.From, msg.To, []byte(raw))
}
