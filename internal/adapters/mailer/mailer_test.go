package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biofert/core/internal/infrastructure/logger"
	"github.com/biofert/core/internal/ports"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("website@biofert.co.ke", ports.MailMessage{
		To:      []string{"info@biofert.co.ke"},
		ReplyTo: "jane@example.com",
		Subject: "Website inquiry: Delivery",
		Body:    "Do you deliver to Nyeri?",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "From: <website@biofert.co.ke>")
	assert.Contains(t, raw, "To: <info@biofert.co.ke>")
	assert.Contains(t, raw, "Reply-To: <jane@example.com>")
	assert.Contains(t, raw, "Subject: Website inquiry: Delivery")
	assert.Contains(t, raw, "Do you deliver to Nyeri?")
}

func TestBuildMessageRejectsBadAddresses(t *testing.T) {
	_, err := buildMessage("not an address", ports.MailMessage{To: []string{"info@biofert.co.ke"}})
	assert.Error(t, err)

	_, err = buildMessage("website@biofert.co.ke", ports.MailMessage{To: []string{"nope"}})
	assert.Error(t, err)

	_, err = buildMessage("website@biofert.co.ke", ports.MailMessage{
		To:      []string{"info@biofert.co.ke"},
		ReplyTo: "@@",
	})
	assert.Error(t, err)
}

func TestLogMailerNeverFails(t *testing.T) {
	m := NewLogMailer(logger.NewNop())
	assert.NoError(t, m.Send(context.Background(), ports.MailMessage{To: []string{"a@b.c"}, Subject: "s"}))
}
