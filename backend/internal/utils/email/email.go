// Package email delivers composed inquiries over SMTP.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"github.com/mahalaxmi-group/site-api/shared/config"
	"github.com/mahalaxmi-group/site-api/shared/domain"
	"github.com/mahalaxmi-group/site-api/shared/logger"
)

const (
	tlsImplicit = "implicit"
	tlsStartTLS = "starttls"
	tlsNone     = "none"
)

type Email struct {
	config config.Mail
	auth   config.SMTPAuth
	now    func() time.Time
}

func New(cfg config.Mail, auth config.SMTPAuth) *Email {
	return &Email{config: cfg, auth: auth, now: time.Now}
}

func (e *Email) timeout() time.Duration {
	timeout := time.Duration(e.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return timeout
}

// tlsMode resolves an empty setting the usual way: 465 is implicit TLS, anything else STARTTLS.
func (e *Email) tlsMode() string {
	switch strings.ToLower(e.config.TLS) {
	case tlsImplicit, tlsStartTLS, tlsNone:
		return strings.ToLower(e.config.TLS)
	}
	if e.config.SMTPPort == 465 {
		return tlsImplicit
	}
	return tlsStartTLS
}

func (e *Email) clientTLSConfig() *tls.Config {
	return &tls.Config{ServerName: e.config.SMTPServer}
}

// Send delivers m once. There is no retry; the caller reports the failure.
func (e *Email) Send(ctx context.Context, m domain.OutgoingMail) error {
	msg := e.buildMessage(m)
	address := net.JoinHostPort(e.config.SMTPServer, fmt.Sprint(e.config.SMTPPort))

	ctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		logger.Log.Error("failed to connect to SMTP server", "address", address, "error", err)
		return err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	var client *smtp.Client
	switch e.tlsMode() {
	case tlsImplicit:
		client = smtp.NewClient(tls.Client(conn, e.clientTLSConfig()))
	case tlsStartTLS:
		client, err = smtp.NewClientStartTLS(conn, e.clientTLSConfig())
		if err != nil {
			logger.Log.Error("failed to start TLS", "address", address, "error", err)
			return err
		}
	default:
		client = smtp.NewClient(conn)
	}
	defer client.Close()

	return e.sendViaClient(client, m.To, msg)
}

func (e *Email) sendViaClient(client *smtp.Client, recipient string, msg []byte) error {
	if e.auth.Username != "" {
		if err := client.Auth(sasl.NewPlainClient("", e.auth.Username, e.auth.Password)); err != nil {
			logger.Log.Error("SMTP authentication failed", "error", err)
			return err
		}
	}

	if err := client.SendMail(e.config.FromAddress, []string{recipient}, bytes.NewReader(msg)); err != nil {
		logger.Log.Error("failed to send message", "recipient", recipient, "error", err)
		return err
	}

	return client.Quit()
}

// headerSafe drops CR and LF so user input can never start a new header line.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

func messageID(fromAddress string) string {
	host := "localhost"
	if at := strings.LastIndex(fromAddress, "@"); at >= 0 && at < len(fromAddress)-1 {
		host = fromAddress[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), host)
}

func (e *Email) buildMessage(m domain.OutgoingMail) []byte {
	from := mail.Address{Name: headerSafe(e.config.FromName), Address: headerSafe(e.config.FromAddress)}
	replyTo := mail.Address{Name: headerSafe(m.ReplyToName), Address: headerSafe(m.ReplyToAddress)}

	var b bytes.Buffer
	writeHeader := func(key, value string) {
		fmt.Fprintf(&b, "%s: %s\r\n", key, value)
	}
	writeHeader("Message-ID", messageID(e.config.FromAddress))
	writeHeader("Date", e.now().Format(time.RFC1123Z))
	writeHeader("From", from.String())
	writeHeader("To", headerSafe(m.To))
	writeHeader("Reply-To", replyTo.String())
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", headerSafe(m.Subject)))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", "text/plain; charset=UTF-8")
	writeHeader("Content-Transfer-Encoding", "8bit")
	writeHeader("X-Mailer", headerSafe(e.config.Mailer))
	writeHeader("X-Priority", "3")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(m.Body, "\r\n", "\n"), "\n", "\r\n"))

	return b.Bytes()
}

// Log is the "log" mail driver used in development: it records what would be sent.
type Log struct{}

func (Log) Send(_ context.Context, m domain.OutgoingMail) error {
	logger.Log.Info("mail delivery skipped (log driver)", "to", m.To, "subject", m.Subject, "reply_to", m.ReplyToAddress)
	return nil
}
