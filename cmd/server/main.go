package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/cyphervault/modules/auth"
	"github.com/dmitrymomot/cyphervault/modules/files"
	"github.com/dmitrymomot/cyphervault/pkg/async"
	"github.com/dmitrymomot/cyphervault/pkg/blob"
	"github.com/dmitrymomot/cyphervault/pkg/config"
	"github.com/dmitrymomot/cyphervault/pkg/email"
	"github.com/dmitrymomot/cyphervault/pkg/httpserver"
	"github.com/dmitrymomot/cyphervault/pkg/logger"
	"github.com/dmitrymomot/cyphervault/pkg/pg"
	"github.com/dmitrymomot/cyphervault/pkg/vault"
)

type appConfig struct {
	Env            string `env:"APP_ENV" envDefault:"development"`
	ServiceName    string `env:"SERVICE_NAME" envDefault:"cyphervault"`
	WorkerPoolSize int    `env:"WORKER_POOL_SIZE" envDefault:"8"`
	EmailDriver    string `env:"EMAIL_DRIVER" envDefault:"dev"` // dev or postmark
}

func main() {
	var (
		appCfg   appConfig
		pgCfg    pg.Config
		httpCfg  httpserver.Config
		vaultCfg vault.Config
		blobCfg  blob.Config
		emailCfg email.Config
		authCfg  auth.Config
		filesCfg files.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&vaultCfg)
	config.MustLoad(&blobCfg)
	config.MustLoad(&emailCfg)
	config.MustLoad(&authCfg)
	config.MustLoad(&filesCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Env, appCfg.ServiceName))
	logger.SetAsDefault(log)

	ctx := context.Background()

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		fatal(log, "failed to connect to postgres", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		fatal(log, "failed to apply migrations", err)
	}

	custodian, err := vault.New(vaultCfg)
	if err != nil {
		fatal(log, "failed to create vault client", err)
	}

	blobs, err := blob.New(ctx, blobCfg)
	if err != nil {
		fatal(log, "failed to create blob storage", err)
	}

	var mailer email.EmailSender
	if appCfg.EmailDriver == "postmark" {
		mailer, err = email.NewPostmarkClient(emailCfg)
		if err != nil {
			fatal(log, "failed to create postmark client", err)
		}
	} else {
		mailer = email.NewDevSender(emailCfg.DevDir)
	}

	workers, err := async.NewPool(appCfg.WorkerPoolSize)
	if err != nil {
		fatal(log, "failed to create worker pool", err)
	}

	tokens, err := auth.NewTokenService([]byte(authCfg.JWTSecret), authCfg.Issuer)
	if err != nil {
		fatal(log, "failed to create token service", err)
	}

	authSvc, err := auth.NewService(authCfg, auth.NewPostgresUserStore(pool), tokens, mailer,
		auth.WithLogger(log),
		auth.WithWorkerPool(workers),
	)
	if err != nil {
		fatal(log, "failed to create auth service", err)
	}

	filesSvc, err := files.NewService(filesCfg, files.NewPostgresFileStore(pool), blobs, custodian,
		files.WithLogger(log),
		files.WithWorkerPool(workers),
	)
	if err != nil {
		fatal(log, "failed to create files service", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool),
		custodian.Healthcheck,
		blob.Healthcheck(blobs),
	))

	r.Mount("/auth", authSvc.Router())
	r.Route("/files", func(r chi.Router) {
		r.Use(authSvc.Middleware())
		r.Mount("/", filesSvc.Router())
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil {
		fatal(log, "server stopped with error", err)
	}
}

// requestLogger emits one structured line per request after it completes.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.InfoContext(r.Context(), "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				logger.Duration(time.Since(start)),
				logger.RequestID(middleware.GetReqID(r.Context())),
			)
		})
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, logger.Error(err))
	os.Exit(1)
}
