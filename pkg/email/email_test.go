package email

import (
	"html"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPasswordResetEmail(t *testing.T) {
	svc := NewEmailService(EmailConfig{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPUsername: "mailer@example.com",
		FromName:     "NF Sistema",
		FrontendURL:  "https://painel.example.com",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	svc.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, svc.SendPasswordResetEmail("ops@example.com", "a b"))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "mailer@example.com", gotFrom)
	assert.Equal(t, []string{"ops@example.com"}, gotTo)

	body := string(gotMsg)
	assert.True(t, strings.HasPrefix(body, "From: \"NF Sistema\" <mailer@example.com>\r\n"))
	assert.Contains(t, body, "Subject: =?utf-8?q?")
	assert.Contains(t, body, "\r\n\r\n<!DOCTYPE html>")
	assert.Contains(t, body, "token=a&#43;b")
	assert.Contains(t, html.UnescapeString(body), "https://painel.example.com/reset-password?token=a+b")
}
