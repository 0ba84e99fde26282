package notifier

import (
	"crypto/tls" // TLS config for STARTTLS
	"fmt"        // Message formatting
	"net"        // Dial with timeout
	"net/smtp"   // SMTP client
	"time"       // Dial timeout duration
)

// Mailer sends a rendered message to a recipient.
// Kept as an interface so tests can record sends instead of hitting a server.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail over SMTP with STARTTLS and plain auth
type SMTPMailer struct {
	Host string // Mail server host
	Port string // Mail server port
	User string // Username, also used as the From address
	Pass string // Password
}

// dialTimeout bounds the connection attempt so a slow mail server
// cannot stall the expense mutation that triggered the alert.
const dialTimeout = 5 * time.Second

// Send delivers a single plain-text message
func (m *SMTPMailer) Send(to, subject, body string) error {
	addr := net.JoinHostPort(m.Host, m.Port) // Build host:port address
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("dial mail server: %w", err) // Could not reach the server
	}
	client, err := smtp.NewClient(conn, m.Host) // Wrap the connection in an SMTP client
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()
	// Upgrade to TLS before authenticating
	if err := client.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host) // Plain auth over the TLS channel
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	// Envelope
	if err := client.Mail(m.User); err != nil {
		return err // Sender rejected
	}
	if err := client.Rcpt(to); err != nil {
		return err // Recipient rejected
	}
	w, err := client.Data() // Open the message body writer
	if err != nil {
		return err
	}
	// Minimal RFC 5322 message
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.User, to, subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err // Server rejected the message
	}
	return client.Quit() // Clean shutdown
}
