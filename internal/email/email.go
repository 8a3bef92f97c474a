package email

import (
	"context"

	"mailblast/internal/logger"
	"mailblast/internal/service"
)

// LogTransport logs messages instead of delivering them. Used for dry
// runs and local development.
type LogTransport struct{}

func (t *LogTransport) Dial(context.Context) (service.TransportConn, error) {
	return &logConn{}, nil
}

type logConn struct{}

func (c *logConn) Send(ctx context.Context, from, to service.EmailAddress, email service.Email) error {
	logger.FromContext(ctx).
		WithField("from", from.Address).
		WithField("to", to.Address).
		WithField("subject", email.Subject).
		Info("dry-run send")

	return nil
}

func (c *logConn) Close() error {
	return nil
}
