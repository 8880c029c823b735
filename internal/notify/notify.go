// Package notify announces newly recorded rejections by email.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/entry"
	"github.com/jedib0t/go-pretty/v6/table"
)

// DefaultSubject is used when the configuration leaves the subject empty.
const DefaultSubject = "New glass rejection recorded"

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Username string
	Password string
	From     string
	Subject  string
	To       []string
	Port     int
}

// Validate checks that a message can be addressed and relayed.
func (c SMTPConfig) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("%w: notify.smtp_host", common.ErrMissingConfig)
	case c.From == "":
		return fmt.Errorf("%w: notify.from", common.ErrMissingConfig)
	case len(c.To) == 0:
		return fmt.Errorf("%w: notify.to", common.ErrMissingConfig)
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: smtp port %d", common.ErrInvalidConfig, c.Port)
	}
	return nil
}

// SendFunc delivers a composed message. It matches smtp.SendMail.
type SendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails each row as a two-column table.
type SMTPNotifier struct {
	send   SendFunc
	logger *slog.Logger
	now    func() time.Time
	config SMTPConfig
}

// NewSMTPNotifier creates a notifier that relays through config.Host.
func NewSMTPNotifier(config SMTPConfig, logger *slog.Logger) (*SMTPNotifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Subject == "" {
		config.Subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPNotifier{
		config: config,
		send:   smtp.SendMail,
		logger: logger,
		now:    time.Now,
	}, nil
}

// WithSender replaces the delivery function, e.g. for tests.
func (n *SMTPNotifier) WithSender(send SendFunc) *SMTPNotifier {
	n.send = send
	return n
}

// Notify sends one message for row. smtp.SendMail does not take a context, so
// cancellation is only checked before sending.
func (n *SMTPNotifier) Notify(ctx context.Context, row entry.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := Compose(n.config, row, n.now())
	if err != nil {
		return fmt.Errorf("compose message: %w", err)
	}

	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}

	addr := net.JoinHostPort(n.config.Host, strconv.Itoa(n.config.Port))
	if err := n.send(addr, auth, n.config.From, n.config.To, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}

	n.logger.Info("Sent rejection notification", "to", strings.Join(n.config.To, ","), "schema", row.Schema.Name)
	return nil
}

// Compose builds a multipart/alternative message with a plain text table and an
// HTML table of the row's fields.
func Compose(config SMTPConfig, row entry.Row, date time.Time) ([]byte, error) {
	subject := config.Subject
	if subject == "" {
		subject = DefaultSubject
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", fieldTable(row).Render() + "\n"},
		{"text/html; charset=UTF-8", htmlBody(row)},
	}
	for _, p := range parts {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	headers := [][2]string{
		{"From", config.From},
		{"To", strings.Join(config.To, ", ")},
		{"Subject", subject},
		{"Date", date.Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + mw.Boundary()},
	}
	for _, h := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", h[0], h[1])
	}
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

// fieldTable lists the row as Field | Value pairs in schema order.
func fieldTable(row entry.Row) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Field", "Value"})
	values := row.Strings()
	for i, name := range row.Schema.Header() {
		var v string
		if i < len(values) {
			v = values[i]
		}
		t.AppendRow(table.Row{name, v})
	}
	return t
}

func htmlBody(row entry.Row) string {
	return "<html><body><p>A new glass rejection was recorded:</p>\n" +
		fieldTable(row).RenderHTML() +
		"\n</body></html>\n"
}
