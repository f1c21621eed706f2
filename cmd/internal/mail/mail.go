// Package mail renders templated e-mails and hands them to a transport.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Envelope is a fully rendered message ready for delivery.
type Envelope struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Transport delivers rendered messages.
type Transport interface {
	Deliver(ctx context.Context, env *Envelope) error
}

// Message names a template and the data it is rendered with.
type Message struct {
	To       string
	Subject  string
	Template string
	Context  any
}

type Mailer struct {
	transport Transport
	from      string
	templates *template.Template
}

func NewMailer(transport Transport, from string) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Mailer{transport: transport, from: from, templates: tmpl}, nil
}

func (m *Mailer) Send(ctx context.Context, msg *Message) error {
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, msg.Template, msg.Context); err != nil {
		return fmt.Errorf("render %s: %w", msg.Template, err)
	}

	var page bytes.Buffer
	if err := m.templates.ExecuteTemplate(&page, "layout", template.HTML(body.String())); err != nil {
		return fmt.Errorf("render layout: %w", err)
	}

	return m.transport.Deliver(ctx, &Envelope{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    page.String(),
	})
}
