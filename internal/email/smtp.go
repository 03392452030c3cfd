package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SMTP TLS modes
const (
	TLSModeNone     = "none"
	TLSModeTLS      = "tls"
	TLSModeStartTLS = "starttls"
)

// SMTPConfig holds the connection settings for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	TLSMode  string
}

// SMTPMailer sends multipart/alternative messages over SMTP.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.TLSMode == "" {
		cfg.TLSMode = TLSModeStartTLS
	}
	return &SMTPMailer{cfg: cfg}
}

// Send delivers msg. The returned id is the generated Message-ID header.
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) (*SendResult, error) {
	if m.cfg.Host == "" || m.cfg.Port == 0 {
		return nil, fmt.Errorf("%w: SMTP_HOST or SMTP_PORT is empty", ErrNotConfigured)
	}
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("%w: no recipients", ErrNotConfigured)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), m.cfg.Host)
	raw := buildMIME(msg, messageID)

	conn, err := m.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("SMTP client failed: %w", err)
	}
	defer client.Close()

	if m.cfg.TLSMode == TLSModeStartTLS {
		if err := client.StartTLS(m.tlsConfig()); err != nil {
			return nil, fmt.Errorf("STARTTLS failed: %w", err)
		}
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return nil, fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	if err := client.Mail(addressOnly(msg.From)); err != nil {
		return nil, fmt.Errorf("SMTP MAIL failed: %w", err)
	}

	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return nil, fmt.Errorf("SMTP RCPT failed: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return nil, fmt.Errorf("SMTP DATA failed: %w", err)
	}

	if _, err := w.Write([]byte(raw)); err != nil {
		return nil, fmt.Errorf("SMTP write failed: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("SMTP close failed: %w", err)
	}

	if err := client.Quit(); err != nil {
		return nil, fmt.Errorf("SMTP QUIT failed: %w", err)
	}

	return &SendResult{ID: strings.Trim(messageID, "<>")}, nil
}

func (m *SMTPMailer) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	dialer := &net.Dialer{}

	if m.cfg.TLSMode == TLSModeTLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: m.tlsConfig()}
		conn, err := tlsDialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("TLS dial failed: %w", err)
		}
		return conn, nil
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("SMTP dial failed: %w", err)
	}
	return conn, nil
}

func (m *SMTPMailer) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName: m.cfg.Host,
		MinVersion: tls.VersionTLS12,
	}
}

// buildMIME renders a multipart/alternative message with text first so
// clients prefer HTML when they can show it.
func buildMIME(msg *Message, messageID string) string {
	boundary := "portfolio-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	var b strings.Builder

	b.WriteString(fmt.Sprintf("From: %s\r\n", headerValue(msg.From)))
	b.WriteString(fmt.Sprintf("To: %s\r\n", headerValue(strings.Join(msg.To, ", "))))
	if msg.ReplyTo != "" {
		b.WriteString(fmt.Sprintf("Reply-To: %s\r\n", headerValue(msg.ReplyTo)))
	}
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject))))
	b.WriteString(fmt.Sprintf("Message-ID: %s\r\n", messageID))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	b.WriteString("\r\n")

	if msg.Text != "" {
		b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.Text)
		b.WriteString("\r\n")
	}

	if msg.HTML != "" {
		b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.HTML)
		b.WriteString("\r\n")
	}

	b.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return b.String()
}

// headerValue strips line breaks so user input cannot add headers.
func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// addressOnly extracts the bare address from "Name <addr>".
func addressOnly(s string) string {
	if start := strings.LastIndex(s, "<"); start >= 0 {
		if end := strings.LastIndex(s, ">"); end > start {
			return s[start+1 : end]
		}
	}
	return s
}
