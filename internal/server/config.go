package server

import "time"

type Config struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	DispatchTimeout time.Duration `envconfig:"DISPATCH_TIMEOUT" default:"10m"`
	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`

	// Credentials for the single operator account.
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`

	FromName    string `envconfig:"FROM_NAME"`
	FromAddress string `envconfig:"FROM_ADDRESS"`

	// Default sends-per-second when a job does not set its own.
	DefaultRate float64 `envconfig:"DEFAULT_RATE" default:"0.5"`
}
