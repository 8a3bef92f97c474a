package main

import (
	"github.com/kelseyhightower/envconfig"

	"mailblast/internal/compose"
	"mailblast/internal/email"
	"mailblast/internal/server"
)

type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	Store     string `envconfig:"STORE" default:"redis"`
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	// DryRun logs messages instead of delivering them.
	DryRun bool `envconfig:"DRY_RUN"`
	// Dedupe skips addresses that were already mailed by an earlier job.
	Dedupe bool `envconfig:"DEDUPE"`

	Server   server.Config    `envconfig:"SERVER"`
	SMTP     email.SMTPConfig `envconfig:"SMTP"`
	Composer compose.Config   `envconfig:"COMPOSER"`
}

func loadConfig() (*Config, error) {
	var config Config

	err := envconfig.Process("mailblast", &config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}
