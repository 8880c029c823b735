package notify

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() SMTPConfig {
	return SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "line",
		Password: "secret",
		From:     "line@example.com",
		To:       []string{"qa@example.com", "plant@example.com"},
	}
}

func testRow(t *testing.T) entry.Row {
	t.Helper()
	row, err := entry.Shape(entry.Input{
		Date:      time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Size:      "36x48",
		Thickness: "1/4",
		GlassType: "Clear",
		Reason:    "Scratched",
		Qty:       2,
		Dept:      "Cutting",
	}, entry.SheetsV1)
	require.NoError(t, err)
	return row
}

func TestSMTPConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*SMTPConfig)
		wantIs error
	}{
		{name: "valid", modify: func(*SMTPConfig) {}},
		{name: "missing host", modify: func(c *SMTPConfig) { c.Host = "" }, wantIs: common.ErrMissingConfig},
		{name: "missing from", modify: func(c *SMTPConfig) { c.From = "" }, wantIs: common.ErrMissingConfig},
		{name: "no recipients", modify: func(c *SMTPConfig) { c.To = nil }, wantIs: common.ErrMissingConfig},
		{name: "bad port", modify: func(c *SMTPConfig) { c.Port = 0 }, wantIs: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantIs == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantIs), "got %v", err)
		})
	}
}

func TestSMTPNotifier_Notify(t *testing.T) {
	var (
		gotAddr string
		gotAuth smtp.Auth
		gotFrom string
		gotTo   []string
		gotMsg  []byte
	)

	n, err := NewSMTPNotifier(testConfig(), nil)
	require.NoError(t, err)
	n.WithSender(func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, auth, from, to, msg
		return nil
	})

	require.NoError(t, n.Notify(context.Background(), testRow(t)))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "line@example.com", gotFrom)
	assert.Equal(t, []string{"qa@example.com", "plant@example.com"}, gotTo)

	msg, err := mail.ReadMessage(strings.NewReader(string(gotMsg)))
	require.NoError(t, err)
	assert.Equal(t, DefaultSubject, msg.Header.Get("Subject"))
	assert.Equal(t, "qa@example.com, plant@example.com", msg.Header.Get("To"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	var types, bodies []string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(part)
		require.NoError(t, err)
		types = append(types, part.Header.Get("Content-Type"))
		bodies = append(bodies, string(b))
	}

	require.Len(t, bodies, 2)
	assert.True(t, strings.HasPrefix(types[0], "text/plain"))
	assert.True(t, strings.HasPrefix(types[1], "text/html"))
	for _, want := range []string{"Week#", "Scratched", "05-03-24", "Cutting"} {
		assert.Contains(t, bodies[0], want)
		assert.Contains(t, bodies[1], want)
	}
	assert.Contains(t, bodies[1], "<table")
}

func TestSMTPNotifier_NoAuthWithoutUsername(t *testing.T) {
	cfg := testConfig()
	cfg.Username = ""

	n, err := NewSMTPNotifier(cfg, nil)
	require.NoError(t, err)

	called := false
	n.WithSender(func(_ string, auth smtp.Auth, _ string, _ []string, _ []byte) error {
		called = true
		assert.Nil(t, auth)
		return nil
	})
	require.NoError(t, n.Notify(context.Background(), testRow(t)))
	assert.True(t, called)
}

func TestSMTPNotifier_SendError(t *testing.T) {
	n, err := NewSMTPNotifier(testConfig(), nil)
	require.NoError(t, err)

	boom := errors.New("connection refused")
	n.WithSender(func(string, smtp.Auth, string, []string, []byte) error { return boom })

	err = n.Notify(context.Background(), testRow(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "smtp.example.com:587")
}

func TestSMTPNotifier_CanceledContext(t *testing.T) {
	n, err := NewSMTPNotifier(testConfig(), nil)
	require.NoError(t, err)
	n.WithSender(func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send should not be called")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, testRow(t)), context.Canceled)
}

func TestNewSMTPNotifier_Invalid(t *testing.T) {
	_, err := NewSMTPNotifier(SMTPConfig{}, nil)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestSubmitterWithNotifier(t *testing.T) {
	appender := &entry.MockAppender{}
	notifier := &MockNotifier{NotifyFunc: func(context.Context, entry.Row) error {
		return errors.New("relay down")
	}}
	s := entry.NewSubmitter(entry.SheetsV1, appender, notifier, nil)

	result, err := s.Submit(context.Background(), entry.Input{
		Date: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Qty:  1,
	})
	require.NoError(t, err)
	assert.True(t, result.Persisted)
	assert.False(t, result.Notified)
	assert.ErrorIs(t, result.NotifyErr, common.ErrNotification)
	assert.Len(t, notifier.NotifiedRows(), 1)
}
