package email

import (
	"bytes"
	"fmt"
	"html/template"
	"mime"
	"net/mail"
	"net/smtp"
	"net/url"
	"time"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	FrontendURL  string
}

// EmailService handles email sending
type EmailService struct {
	config   EmailConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now      func() time.Time
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	if config.FromEmail == "" {
		config.FromEmail = config.SMTPUsername
	}
	return &EmailService{config: config, sendMail: smtp.SendMail, now: time.Now}
}

// SendPasswordResetEmail sends the password recovery link for token
func (s *EmailService) SendPasswordResetEmail(toEmail, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s",
		s.config.FrontendURL,
		url.QueryEscape(token),
	)

	htmlContent, err := renderPasswordResetEmail(resetURL)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := "Recuperação de senha - NF Sistema"
	message := s.buildHTMLEmail(toEmail, subject, htmlContent)

	return s.send(toEmail, message)
}

// send delivers message over SMTP with STARTTLS on the submission port
func (s *EmailService) send(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.sendMail(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildHTMLEmail assembles the RFC 5322 message. Display names and the
// subject are Q-encoded so accents survive.
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	from := mail.Address{Name: s.config.FromName, Address: s.config.FromEmail}
	headers := [][2]string{
		{"From", from.String()},
		{"To", to},
		{"Subject", mime.QEncoding.Encode("utf-8", subject)},
		{"Date", s.now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", `text/html; charset="UTF-8"`},
	}

	var buf bytes.Buffer
	for _, h := range headers {
		buf.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	buf.WriteString("\r\n")
	buf.WriteString(htmlBody)
	return buf.Bytes()
}

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(passwordResetTemplate))

func renderPasswordResetEmail(resetURL string) (string, error) {
	var buf bytes.Buffer
	if err := passwordResetTmpl.Execute(&buf, struct{ ResetURL string }{resetURL}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const passwordResetTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
    <meta charset="UTF-8">
    <title>Recuperação de senha</title>
</head>
<body style="font-family: Arial, sans-serif; color: #333;">
    <p>Olá,</p>
    <p>Você solicitou a recuperação de senha do painel NF Sistema.</p>
    <p>Clique no link abaixo para redefinir sua senha:</p>
    <p><a href="{{.ResetURL}}">{{.ResetURL}}</a></p>
    <p>O link expira em uma hora.</p>
    <p>Se você não solicitou isso, apenas ignore este e-mail.</p>
</body>
</html>
`
