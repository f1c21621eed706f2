package mail

import (
	"context"
	"errors"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type captureTransport struct {
	sent []*Envelope
	err  error
}

func (c *captureTransport) Deliver(_ context.Context, env *Envelope) error {
	c.sent = append(c.sent, env)
	return c.err
}

func TestMailer_RendersCancellation(t *testing.T) {
	transport := &captureTransport{}
	mailer, err := NewMailer(transport, "Equipe GoBarber <noreplay@gmail.com>")
	require.NoError(t, err)

	err = mailer.Send(context.Background(), &Message{
		To:       "Barber <barber@gobarber.com>",
		Subject:  "Agendamento cancelado",
		Template: "cancellation",
		Context: map[string]string{
			"Provider": "Barber",
			"User":     "<Client>",
			"Date":     "dia 01 de janeiro, ás 10:00h",
		},
	})
	require.NoError(t, err)
	require.Len(t, transport.sent, 1)

	env := transport.sent[0]
	assert.Equal(t, "Equipe GoBarber <noreplay@gmail.com>", env.From)
	assert.Equal(t, "Barber <barber@gobarber.com>", env.To)
	assert.Equal(t, "Agendamento cancelado", env.Subject)
	assert.Contains(t, env.HTML, "Olá, Barber")
	assert.Contains(t, env.HTML, "dia 01 de janeiro, ás 10:00h")
	assert.Contains(t, env.HTML, "&lt;Client&gt;")
	assert.Contains(t, env.HTML, "Equipe GoBarber")
}

func TestMailer_PropagatesTransportError(t *testing.T) {
	transport := &captureTransport{err: errors.New("connection refused")}
	mailer, err := NewMailer(transport, "from@gobarber.com")
	require.NoError(t, err)

	err = mailer.Send(context.Background(), &Message{To: "a@b.c", Template: "cancellation", Context: map[string]string{}})
	assert.ErrorContains(t, err, "connection refused")
}

type fakeSES struct {
	input *sesv2.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	return &sesv2.SendEmailOutput{}, nil
}

func TestSESTransport_Deliver(t *testing.T) {
	client := &fakeSES{}
	transport := NewSESTransportWithClient(client)

	err := transport.Deliver(context.Background(), &Envelope{
		From:    "from@gobarber.com",
		To:      "to@gobarber.com",
		Subject: "Agendamento cancelado",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "from@gobarber.com", *client.input.FromEmailAddress)
	assert.Equal(t, []string{"to@gobarber.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Agendamento cancelado", *client.input.Content.Simple.Subject.Data)
	assert.Equal(t, "<p>hi</p>", *client.input.Content.Simple.Body.Html.Data)
}

func TestNewSMTPTransport(t *testing.T) {
	transport, err := NewSMTPTransport(SMTPConfig{Host: "smtp.mailtrap.io", Port: 2525, User: "u", Pass: "p"})
	require.NoError(t, err)
	assert.NotNil(t, transport)

	_, err = NewSMTPTransport(SMTPConfig{Host: "", Port: 2525})
	assert.Error(t, err)
}
