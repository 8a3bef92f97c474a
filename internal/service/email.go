package service

import "context"

type EmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// Email is a fully rendered message, ready for the wire.
type Email struct {
	Subject string
	Body    string
}

// TransportConn is an open mail session. The dispatcher scopes one
// session to one job and closes it on every exit path.
type TransportConn interface {
	Send(ctx context.Context, from, to EmailAddress, email Email) error
	Close() error
}

// Transport hands out mail sessions. Implementations live in
// internal/email.
type Transport interface {
	Dial(ctx context.Context) (TransportConn, error)
}
