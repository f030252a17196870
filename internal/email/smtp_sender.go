package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// SMTPSender envia correos via SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	useTLS   bool
}

func NewSMTPSender(host string, port int, username, password, from, fromName string, useTLS bool) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
		useTLS:   useTLS,
	}, nil
}

func (s *SMTPSender) Send(_ context.Context, toEmail string, kind Kind, vars Vars) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}

	subject, body, err := renderTemplate(kind, vars)
	if err != nil {
		return err
	}
	msg := buildMessage(s.from, s.fromName, toEmail, subject, body)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if s.useTLS {
		conn, err := tls.Dial("tcp", addr, &tls.Config{
			ServerName: s.host,
		})
		if err != nil {
			return err
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.host)
		if err != nil {
			return err
		}
		defer client.Quit()

		if auth != nil {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
		if err := client.Mail(s.from); err != nil {
			return err
		}
		if err := client.Rcpt(toEmail); err != nil {
			return err
		}
		writer, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := writer.Write([]byte(msg)); err != nil {
			_ = writer.Close()
			return err
		}
		return writer.Close()
	}

	return smtp.SendMail(addr, auth, s.from, []string{toEmail}, []byte(msg))
}

func renderTemplate(kind Kind, vars Vars) (string, string, error) {
	greeting := "Hello"
	if strings.TrimSpace(vars.DisplayName) != "" {
		greeting = "Hello " + vars.DisplayName
	}
	switch kind {
	case KindConfirmation:
		return "Confirm your email address", fmt.Sprintf(
			"%s,\n\nConfirm your email address by opening this link:\n%s\n\nThe link expires at %s UTC.\n",
			greeting, vars.Link, vars.ExpiresAt.UTC().Format(time.RFC3339),
		), nil
	case KindTwoFactor:
		return "Your login code", fmt.Sprintf(
			"%s,\n\nYour login code is %s.\nIt is valid for 10 minutes.\n",
			greeting, vars.Code,
		), nil
	case KindPasswordReset:
		return "Reset your password", fmt.Sprintf(
			"%s,\n\nReset your password by opening this link:\n%s\n\nThe link expires at %s UTC.\nIf you did not request this, ignore this message.\n",
			greeting, vars.Link, vars.ExpiresAt.UTC().Format(time.RFC3339),
		), nil
	default:
		return "", "", fmt.Errorf("unknown email kind %q", kind)
	}
}

func buildMessage(from, fromName, to, subject, body string) string {
	fromHeader := from
	if strings.TrimSpace(fromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}

	headers := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
	}

	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}
