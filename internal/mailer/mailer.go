package mailer

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends transactional mail over plain SMTP. Port 465 uses implicit
// TLS, everything else upgrades via STARTTLS when the server offers it.
type Mailer struct {
	cfg Config
}

func New(cfg Config) Mailer {
	return Mailer{cfg: cfg}
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (m Mailer) Send(to, subject, body string) error {
	msg := buildPlainMessage(m.cfg.From, to, subject, body)
	return m.deliver(to, msg)
}

// SendWithAttachment builds a multipart/mixed message with a text part and a
// single base64-encoded attachment.
func (m Mailer) SendWithAttachment(to, subject, body string, att Attachment) error {
	const boundary = "carcare-mail-boundary"

	var b strings.Builder
	b.WriteString("From: " + m.cfg.From + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/mixed; boundary=" + boundary + "\r\n")
	b.WriteString("\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body + "\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: " + att.ContentType + "; name=\"" + att.Filename + "\"\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString("Content-Disposition: attachment; filename=\"" + att.Filename + "\"\r\n")
	b.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString(att.Data)
	for len(encoded) > 76 {
		b.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded + "\r\n")
	b.WriteString("--" + boundary + "--\r\n")

	return m.deliver(to, b.String())
}

func (m Mailer) deliver(to, message string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	client, err := m.client(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(parseAddress(m.cfg.From)); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write([]byte(message)); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

func (m Mailer) client(addr string) (*smtp.Client, error) {
	if m.cfg.Port == 465 {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, m.cfg.Host)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return nil, err
	}
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return client, nil
}

func buildPlainMessage(from, to, subject, body string) string {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}
	return strings.Join(headers, "\r\n")
}

func parseAddress(from string) string {
	start := strings.Index(from, "<")
	end := strings.Index(from, ">")
	if start >= 0 && end > start {
		return strings.TrimSpace(from[start+1 : end])
	}
	return strings.TrimSpace(from)
}
