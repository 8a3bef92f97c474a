package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/pkg/errors"

	"mailblast/internal/service"
)

// Connection security modes. STARTTLS upgrades a plain connection
// (port 587); "tls" connects over implicit TLS (port 465); "plain" is
// for local relays only.
const (
	CryptoStartTLS = "starttls"
	CryptoTLS      = "tls"
	CryptoPlain    = "plain"
)

type SMTPConfig struct {
	Host     string `envconfig:"HOST"`
	Port     int    `envconfig:"PORT" default:"587"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	Crypto   string `envconfig:"CRYPTO" default:"starttls"`
}

// SMTPTransport dials one authenticated session per job.
type SMTPTransport struct {
	config SMTPConfig
}

func NewSMTP(config SMTPConfig) *SMTPTransport {
	return &SMTPTransport{config: config}
}

func (t *SMTPTransport) Dial(_ context.Context) (service.TransportConn, error) {
	addr := fmt.Sprintf("%s:%d", t.config.Host, t.config.Port)

	var (
		client *smtp.Client
		err    error
	)

	switch strings.ToLower(t.config.Crypto) {
	case CryptoStartTLS:
		client, err = smtp.DialStartTLS(addr, &tls.Config{ServerName: t.config.Host})
	case CryptoTLS:
		client, err = smtp.DialTLS(addr, &tls.Config{ServerName: t.config.Host})
	case CryptoPlain:
		client, err = smtp.Dial(addr)
	default:
		return nil, errors.Errorf("unsupported crypto mode %q", t.config.Crypto)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to SMTP server")
	}

	if t.config.Username != "" {
		auth := sasl.NewLoginClient(t.config.Username, t.config.Password)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, errors.Wrap(err, "failed to authenticate")
		}
	}

	return &smtpConn{client: client}, nil
}

type smtpConn struct {
	client *smtp.Client
}

func (c *smtpConn) Send(_ context.Context, from, to service.EmailAddress, email service.Email) error {
	msg := buildMessage(from, to, email)

	err := c.client.SendMail(from.Address, []string{to.Address}, strings.NewReader(msg))
	if err != nil {
		return errors.Wrap(err, "failed to send email")
	}

	return nil
}

func (c *smtpConn) Close() error {
	return c.client.Close()
}

// buildMessage assembles the RFC 822 message. Bodies are sent as HTML,
// which also renders fine for plain-text drafts.
func buildMessage(from, to service.EmailAddress, email service.Email) string {
	var b strings.Builder

	b.WriteString("From: " + formatAddress(from) + "\r\n")
	b.WriteString("To: " + formatAddress(to) + "\r\n")
	b.WriteString("Subject: " + email.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(email.Body)
	b.WriteString("\r\n")

	return b.String()
}

func formatAddress(a service.EmailAddress) string {
	addr := mail.Address{Name: a.Name, Address: a.Address}
	return addr.String()
}
