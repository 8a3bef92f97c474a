package server

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"mailblast/internal/logger"
	"mailblast/internal/service"
)

// Server runs the HTTP API and the dispatch worker side by side. The
// worker drains the job queue one job at a time; sequencing jobs on a
// single loop is what keeps the per-job rate limit meaningful.
type Server struct {
	Config
	service  *service.Service
	sessions *sessionStore
}

func New(config Config, svc *service.Service) *Server {
	return &Server{
		Config:   config,
		service:  svc,
		sessions: newSessionStore(),
	}
}

func (s *Server) dispatchJobs(ctx context.Context) error {
	log := logger.FromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			timeoutCtx, cancel := context.WithTimeout(ctx, s.DispatchTimeout)

			ok, err := s.service.DispatchNext(timeoutCtx)
			cancel()

			if service.IsFatal(err) {
				return err
			}
			if err != nil {
				log.WithError(err).Error("failed to dispatch job")
				continue
			}

			if ok {
				continue
			}

			log.Debugf("dispatcher will sleep for %s", s.PollInterval.String())

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.PollInterval):
			}
		}
	}
}

func (s *Server) serveHTTP(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Addr,
		Handler: s.routes(ctx),
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}

		return ctx.Err()
	}
}

func (s *Server) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return s.serveHTTP(ctx)
	})
	eg.Go(func() error {
		return s.dispatchJobs(ctx)
	})

	return eg.Wait()
}
