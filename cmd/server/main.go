package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/student-portal/config"
	"github.com/ErlanBelekov/student-portal/internal/email"
	"github.com/ErlanBelekov/student-portal/internal/health"
	"github.com/ErlanBelekov/student-portal/internal/infrastructure/mongodb"
	"github.com/ErlanBelekov/student-portal/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/student-portal/internal/log"
	"github.com/ErlanBelekov/student-portal/internal/metrics"
	"github.com/ErlanBelekov/student-portal/internal/password"
	"github.com/ErlanBelekov/student-portal/internal/repository"
	"github.com/ErlanBelekov/student-portal/internal/session"
	"github.com/ErlanBelekov/student-portal/internal/token"
	httptransport "github.com/ErlanBelekov/student-portal/internal/transport/http"
	"github.com/ErlanBelekov/student-portal/internal/transport/http/handler"
	"github.com/ErlanBelekov/student-portal/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

// directory bundles the repositories of whichever backend is configured.
type directory struct {
	students    repository.StudentRepository
	tasks       repository.TaskRepository
	submissions repository.SubmissionRepository
	schedules   repository.ScheduleRepository
	pinger      health.Pinger
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	dir, err := openDirectory(ctx, cfg)
	if err != nil {
		stop()
		log.Fatalf("directory: %v", err)
	}
	defer dir.close()
	logger.Info("directory connected", "backend", cfg.DirectoryBackend)

	secret := []byte(cfg.SecretKey)
	codec := token.NewCodec(secret, cfg.TokenTTL)
	hasher := password.NewHasher(cfg.SecretKey, cfg.BcryptCost)
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	sessions := session.NewStore(session.Options{
		Secure: cfg.SecureCookies(),
		Domain: cfg.CookieDomain,
		MaxAge: cfg.SessionMaxAge,
	})

	// Auth
	identities := usecase.NewIdentityResolver(dir.students, logger)
	authUsecase := usecase.NewAuthUsecase(identities, codec, hasher, sender, cfg.AppURL, logger)
	authHandler := handler.NewAuthHandler(authUsecase, sessions, logger)

	// Portal
	portalUsecase := usecase.NewPortalUsecase(dir.students, dir.tasks, dir.submissions, dir.schedules, sender, cfg.OwnerEmail, logger)
	portalHandler := handler.NewPortalHandler(portalUsecase, logger)
	pageHandler := handler.NewPageHandler(sessions, authUsecase, portalUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(dir.pinger, cfg.DirectoryBackend, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(httptransport.RouterDeps{
			Logger:   logger,
			Sessions: sessions,
			Resolver: authUsecase,
			Auth:     authHandler,
			Portal:   portalHandler,
			Pages:    pageHandler,
			HSTS:     cfg.SecureCookies(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func openDirectory(ctx context.Context, cfg *config.Config) (*directory, error) {
	switch cfg.DirectoryBackend {
	case "mongo":
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &directory{
			students:    mongodb.NewStudentRepository(db),
			tasks:       mongodb.NewTaskRepository(db),
			submissions: mongodb.NewSubmissionRepository(db),
			schedules:   mongodb.NewScheduleRepository(db),
			pinger:      mongodb.NewPinger(client),
			close:       func() { _ = client.Disconnect(context.Background()) },
		}, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &directory{
			students:    postgres.NewStudentRepository(pool),
			tasks:       postgres.NewTaskRepository(pool),
			submissions: postgres.NewSubmissionRepository(pool),
			schedules:   postgres.NewScheduleRepository(pool),
			pinger:      pool,
			close:       pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown directory backend %q", cfg.DirectoryBackend)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
