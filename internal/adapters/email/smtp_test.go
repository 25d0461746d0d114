package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

type recordingSender struct {
	messages []*gomail.Message
	err      error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	r.messages = append(r.messages, m...)
	return r.err
}

func newTestMailer(s sender) *SMTPMailer {
	m := NewSMTPMailer(Config{Host: "smtp.local", Port: 587, Username: "bot@expenseflow.test", FromName: "ExpenseFlow"})
	m.dialer = s
	return m
}

func TestSMTPMailer_Send(t *testing.T) {
	rec := &recordingSender{}
	mailer := newTestMailer(rec)

	err := mailer.Send(context.Background(), domain.Email{To: "owner@expenseflow.test", Subject: "Expense approved", HTML: "<p>ok</p>"})
	require.NoError(t, err)
	require.Len(t, rec.messages, 1)

	msg := rec.messages[0]
	assert.Equal(t, []string{"owner@expenseflow.test"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Expense approved"}, msg.GetHeader("Subject"))
	assert.Contains(t, msg.GetHeader("From")[0], "bot@expenseflow.test")

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<p>ok</p>")
}

func TestSMTPMailer_SendErrors(t *testing.T) {
	mailer := newTestMailer(&recordingSender{err: errors.New("connection refused")})

	err := mailer.Send(context.Background(), domain.Email{To: "owner@expenseflow.test"})
	assert.ErrorContains(t, err, "connection refused")

	err = mailer.Send(context.Background(), domain.Email{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = mailer.Send(ctx, domain.Email{To: "owner@expenseflow.test"})
	assert.ErrorIs(t, err, context.Canceled)
}
