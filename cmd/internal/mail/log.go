package mail

import (
	"context"
	"github.com/labstack/gommon/log"
)

// LogTransport only logs messages; meant for local development.
type LogTransport struct{}

func (LogTransport) Deliver(_ context.Context, env *Envelope) error {
	log.Infoj(log.JSON{
		"mail_to":      env.To,
		"mail_from":    env.From,
		"mail_subject": env.Subject,
		"mail_bytes":   len(env.HTML),
	})
	return nil
}
