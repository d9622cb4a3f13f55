package email

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/mail"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mahalaxmi-group/site-api/shared/config"
	"github.com/mahalaxmi-group/site-api/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- in-process SMTP sink ---

type received struct {
	from string
	to   []string
	data []byte
}

type sinkBackend struct {
	mu       sync.Mutex
	messages []received
	rejectTo string
}

func (b *sinkBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &sinkSession{backend: b}, nil
}

func (b *sinkBackend) all() []received {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]received(nil), b.messages...)
}

type sinkSession struct {
	backend *sinkBackend
	current received
}

func (s *sinkSession) Reset()        { s.current = received{} }
func (s *sinkSession) Logout() error { return nil }

func (s *sinkSession) Mail(from string, _ *smtp.MailOptions) error {
	s.current.from = from
	return nil
}

func (s *sinkSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	if to == s.backend.rejectTo {
		return &smtp.SMTPError{Code: 550, Message: "mailbox unavailable"}
	}
	s.current.to = append(s.current.to, to)
	return nil
}

func (s *sinkSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.current.data = data
	s.backend.mu.Lock()
	s.backend.messages = append(s.backend.messages, s.current)
	s.backend.mu.Unlock()
	return nil
}

func startSink(t *testing.T) (*sinkBackend, string, int) {
	t.Helper()
	backend := &sinkBackend{}
	server := smtp.NewServer(backend)
	server.Domain = "localhost"
	server.AllowInsecureAuth = true
	server.ReadTimeout = 5 * time.Second
	server.WriteTimeout = 5 * time.Second

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go server.Serve(l)
	t.Cleanup(func() { server.Close() })

	addr := l.Addr().(*net.TCPAddr)
	return backend, addr.IP.String(), addr.Port
}

func testMailConfig(host string, port int) config.Mail {
	return config.Mail{
		SMTPServer:  host,
		SMTPPort:    port,
		TLS:         "none",
		Timeout:     5,
		FromAddress: "noreply@themahalaxmigroup.com",
		FromName:    "Mahalaxmi Website",
		Mailer:      "SiteAPI/1.0",
	}
}

func testMail() domain.OutgoingMail {
	return domain.OutgoingMail{
		To:             "chemicals@example.com",
		Subject:        "[Mahalaxmi Website] Chemicals Division from Ravi",
		Body:           "Name: Ravi\nMessage:\nNeed a quote\n",
		ReplyToName:    "Ravi",
		ReplyToAddress: "ravi@example.com",
	}
}

func TestSend(t *testing.T) {
	backend, host, port := startSink(t)
	e := New(testMailConfig(host, port), config.SMTPAuth{})

	require.NoError(t, e.Send(context.Background(), testMail()))

	msgs := backend.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, "noreply@themahalaxmigroup.com", msgs[0].from)
	assert.Equal(t, []string{"chemicals@example.com"}, msgs[0].to)

	parsed, err := mail.ReadMessage(bytes.NewReader(msgs[0].data))
	require.NoError(t, err)
	assert.Equal(t, "[Mahalaxmi Website] Chemicals Division from Ravi", parsed.Header.Get("Subject"))
	assert.Equal(t, `"Ravi" <ravi@example.com>`, parsed.Header.Get("Reply-To"))
	assert.Contains(t, parsed.Header.Get("From"), "<noreply@themahalaxmigroup.com>")
	assert.Equal(t, "text/plain; charset=UTF-8", parsed.Header.Get("Content-Type"))
	assert.Equal(t, "3", parsed.Header.Get("X-Priority"))
	assert.Equal(t, "SiteAPI/1.0", parsed.Header.Get("X-Mailer"))
	assert.True(t, strings.HasSuffix(parsed.Header.Get("Message-ID"), "@themahalaxmigroup.com>"))

	body, err := io.ReadAll(parsed.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Need a quote")
}

func TestSend_RecipientRejected(t *testing.T) {
	backend, host, port := startSink(t)
	backend.rejectTo = "chemicals@example.com"
	e := New(testMailConfig(host, port), config.SMTPAuth{})

	err := e.Send(context.Background(), testMail())
	assert.Error(t, err)
	assert.Empty(t, backend.all())
}

func TestSend_ServerUnreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	e := New(testMailConfig("127.0.0.1", port), config.SMTPAuth{})
	assert.Error(t, e.Send(context.Background(), testMail()))
}

func TestBuildMessage_HeaderInjection(t *testing.T) {
	e := New(testMailConfig("localhost", 25), config.SMTPAuth{})
	m := testMail()
	m.ReplyToName = "Eve\r\nBcc: victim@example.com"
	m.Subject = "Hello\nBcc: victim@example.com"

	raw := e.buildMessage(m)
	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Empty(t, parsed.Header.Get("Bcc"))
	assert.NotContains(t, string(raw), "\nBcc:")
}

func TestBuildMessage_NonASCII(t *testing.T) {
	e := New(testMailConfig("localhost", 25), config.SMTPAuth{})
	m := testMail()
	m.ReplyToName = "Rāvi Kumār"
	m.Subject = "[Mahalaxmi Website] General Inquiry from Rāvi"

	parsed, err := mail.ReadMessage(bytes.NewReader(e.buildMessage(m)))
	require.NoError(t, err)

	dec := new(mail.AddressParser)
	replyTo, err := dec.Parse(parsed.Header.Get("Reply-To"))
	require.NoError(t, err)
	assert.Equal(t, "Rāvi Kumār", replyTo.Name)
	assert.True(t, strings.HasPrefix(parsed.Header.Get("Subject"), "=?utf-8?q?"))
}

func TestTLSMode(t *testing.T) {
	tests := []struct {
		setting string
		port    int
		want    string
	}{
		{"", 465, tlsImplicit},
		{"", 587, tlsStartTLS},
		{"", 25, tlsStartTLS},
		{"none", 25, tlsNone},
		{"IMPLICIT", 2465, tlsImplicit},
		{"bogus", 465, tlsImplicit},
	}
	for _, tt := range tests {
		e := New(config.Mail{TLS: tt.setting, SMTPPort: tt.port}, config.SMTPAuth{})
		assert.Equal(t, tt.want, e.tlsMode(), "tls=%q port=%d", tt.setting, tt.port)
	}
}
