package email_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/internal/infrastructure/email"
	"github.com/jhoicas/inventory-manager/pkg/config"
)

func TestNewSMTPMailer_SinHostEsNil(t *testing.T) {
	assert.Nil(t, email.NewSMTPMailer(config.SMTPConfig{}))
	assert.NotNil(t, email.NewSMTPMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 587}))
}

func TestNewMessage(t *testing.T) {
	msg := email.NewMessage("alertas@example.com", []string{"a@example.com", "b@example.com"}, "Stock bajo", "<p>hola</p>")
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, msg.GetHeader("To"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Subject: Stock bajo")
	assert.Contains(t, out, "text/html")
	assert.Contains(t, out, "<p>hola</p>")
}
