package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"mailblast/internal/compose"
	"mailblast/internal/db"
	"mailblast/internal/email"
	"mailblast/internal/logger"
	"mailblast/internal/server"
	"mailblast/internal/service"
)

// store is the union of everything the service persists: the job
// queue, the job store and the suppression set.
type store interface {
	service.JobQueue
	service.JobStore
	service.SuppressionSet
}

func newStore(config *Config) store {
	if config.Store == "memory" {
		return db.NewInmem()
	}

	redisClient := redis.NewClient(&redis.Options{
		Network: "tcp",
		Addr:    config.RedisAddr,
	})

	return db.NewRedis(redisClient)
}

func newTransport(config *Config) service.Transport {
	if config.DryRun {
		return &email.LogTransport{}
	}

	return email.NewSMTP(config.SMTP)
}

func main() {
	// missing .env is fine, the environment may be set directly
	_ = godotenv.Load()

	config, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	rootLog := logger.New(config.LogLevel)
	ctx := logger.WithLogger(context.Background(), rootLog)

	composer, err := compose.NewClient(&http.Client{Timeout: 30 * time.Second}, config.Composer)
	if err != nil {
		rootLog.WithError(err).Fatal("failed to build composer client")
	}

	st := newStore(config)

	dispatcher := &service.Dispatcher{
		Transport: newTransport(config),
	}
	if config.Dedupe {
		dispatcher.Suppression = st
	}

	svc := &service.Service{
		Queue:      st,
		Store:      st,
		Composer:   composer,
		Dispatcher: dispatcher,
	}

	srv := server.New(config.Server, svc)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return srv.Run(ctx)
	})
	eg.Go(sigTrap(ctx))

	err = eg.Wait()
	if err != nil {
		if _, ok := err.(errSignal); ok {
			rootLog.WithError(err).Info("shutting down")
			return
		}

		rootLog.WithError(err).Fatal("service stopped")
	}
}
