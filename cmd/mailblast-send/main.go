// Command mailblast-send dispatches one bulk email from the command
// line, without going through the HTTP API or the job queue.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/alecthomas/kingpin.v2"

	"mailblast/internal/compose"
	"mailblast/internal/email"
	"mailblast/internal/logger"
	"mailblast/internal/service"
)

type Config struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"warning"`
	FromName    string `envconfig:"SERVER_FROM_NAME"`
	FromAddress string `envconfig:"SERVER_FROM_ADDRESS"`

	SMTP     email.SMTPConfig `envconfig:"SMTP"`
	Composer compose.Config   `envconfig:"COMPOSER"`
}

func main() {
	_ = godotenv.Load()

	app := kingpin.New("mailblast-send", "Send a bulk email from the command line")

	emails := app.Flag("emails", "Comma-separated recipient addresses").Required().String()
	subject := app.Flag("subject", "Email subject").Required().String()
	body := app.Flag("body", "Literal email body").String()
	purpose := app.Flag("purpose", "Purpose for an AI-drafted body, used when --body is empty").String()
	tone := app.Flag("tone", "Tone for the AI draft").Default("professional").String()
	rate := app.Flag("rate", "Sends per second").Default("0.5").Float64()
	dryRun := app.Flag("dry-run", "Log messages instead of delivering them").Bool()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	var config Config
	if err := envconfig.Process("mailblast", &config); err != nil {
		log.Fatal(err)
	}

	rootLog := logger.New(config.LogLevel)
	ctx := logger.WithLogger(context.Background(), rootLog)

	messageBody := *body
	if messageBody == "" {
		if *purpose == "" {
			app.Fatalf("either --body or --purpose is required")
		}

		composer, err := compose.NewClient(&http.Client{Timeout: 30 * time.Second}, config.Composer)
		if err != nil {
			rootLog.WithError(err).Fatal("failed to build composer client")
		}

		messageBody, err = composer.ComposeEmail(ctx, *purpose, *tone)
		if err != nil {
			rootLog.WithError(err).Fatal("failed to draft email body")
		}
	}

	var recipients []service.Recipient
	for _, address := range strings.Split(*emails, ",") {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		recipients = append(recipients, service.Recipient{Address: address})
	}

	var transport service.Transport = email.NewSMTP(config.SMTP)
	if *dryRun {
		transport = &email.LogTransport{}
	}

	job := service.NewSendJob(service.EmailAddress{
		Name:    config.FromName,
		Address: config.FromAddress,
	}, service.Template{
		Subject: *subject,
		Body:    messageBody,
	}, recipients, *rate)

	dispatcher := &service.Dispatcher{Transport: transport}

	if err := dispatcher.Dispatch(ctx, job); err != nil {
		rootLog.WithError(err).Fatal("dispatch failed")
	}

	summary := job.Summary()
	fmt.Printf("sent %d of %d, %d failed\n", summary.Sent, summary.Total, summary.Failed)

	for _, result := range job.Results {
		if result.Status == service.StatusFailed {
			fmt.Printf("  %s: %s\n", result.Address, result.Error)
		}
	}

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
