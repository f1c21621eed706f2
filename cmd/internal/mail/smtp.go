package mail

import (
	"context"
	"fmt"
	gomail "github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host   string
	Port   int
	User   string
	Pass   string
	Secure bool
}

type SMTPTransport struct {
	client *gomail.Client
}

func NewSMTPTransport(cfg SMTPConfig) (*SMTPTransport, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Secure {
		opts = append(opts, gomail.WithSSL())
	}
	if cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.User),
			gomail.WithPassword(cfg.Pass),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPTransport{client: client}, nil
}

func (s *SMTPTransport) Deliver(ctx context.Context, env *Envelope) error {
	msg := gomail.NewMsg()
	if err := msg.From(env.From); err != nil {
		return fmt.Errorf("invalid sender %q: %w", env.From, err)
	}
	if err := msg.To(env.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", env.To, err)
	}
	msg.Subject(env.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, env.HTML)

	return s.client.DialAndSendWithContext(ctx, msg)
}
