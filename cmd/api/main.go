package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"gobarber/cmd/internal/config"
	"gobarber/cmd/internal/domain/database"
	"gobarber/cmd/internal/domain/database/repository"
	"gobarber/cmd/internal/jobs"
	"gobarber/cmd/internal/mail"
	authmw "gobarber/cmd/internal/middleware"
	"gobarber/cmd/internal/queue"
	"gobarber/cmd/internal/routes"
	"gobarber/cmd/internal/service"
	"gobarber/cmd/internal/utils/validators"
	"golang.org/x/time/rate"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	log.SetLevel(logLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Errorf("failed to close database: %v", err)
		}
	}()

	backend, closeQueue, err := newQueue(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize job queue: ", err)
	}
	defer closeQueue()

	transport, err := newMailTransport(ctx, cfg.Mail)
	if err != nil {
		log.Fatal("failed to initialize mail transport: ", err)
	}
	mailer, err := mail.NewMailer(transport, cfg.Mail.From)
	if err != nil {
		log.Fatal("failed to load mail templates: ", err)
	}

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Getting services
	validate := validators.New()
	notificationService := service.NewNotificationService(notificationRepo, userRepo, cfg.Location())
	apptService := service.NewAppointmentService(apptRepo, userRepo, notificationService, backend, validate, cfg.AppURL)
	providerService := service.NewProviderService(userRepo, apptRepo, cfg.AppURL)

	worker := queue.NewWorker(backend, jobs.NewCancellationMail(mailer, cfg.Location()))
	stopWorker := startWorker(ctx, worker)
	defer stopWorker()

	e := newServer(cfg)
	routes.Register(e, authmw.Auth(cfg.AppSecret),
		routes.NewAppointmentDefault(apptService),
		routes.NewProviderDefault(providerService),
		routes.NewNotificationDefault(notificationService))

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.AppPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("http server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to shut down http server: %v", err)
	}
	stopWorker()
}

// startWorker runs the worker detached from ctx cancellation, so jobs queued
// by requests drained during shutdown are still processed. The returned func
// stops the worker and waits for it; calling it again is a no-op.
func startWorker(ctx context.Context, worker *queue.Worker) func() {
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := worker.Run(workerCtx); err != nil {
			log.Errorf("job worker stopped: %v", err)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func newServer(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Infoj(log.JSON{
				"request_id": v.RequestID,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
			})
			return nil
		},
	}))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitRPS))))

	// Avatars
	e.Static("/files", cfg.UploadDir)
	return e
}

// newQueue picks the job backend. The returned func releases whatever the
// backend holds.
func newQueue(ctx context.Context, cfg *config.Config) (queue.Backend, func(), error) {
	if cfg.QueueDriver != "redis" {
		return queue.NewMemoryQueue(cfg.QueueSize), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	q, err := queue.NewRedisQueue(ctx, client, queue.DefaultStream, "api-"+uuid.NewString())
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return q, func() { _ = client.Close() }, nil
}

func newMailTransport(ctx context.Context, cfg config.MailConfig) (mail.Transport, error) {
	switch cfg.Driver {
	case "ses":
		return mail.NewSESTransport(ctx, cfg.AWSRegion)
	case "log":
		return mail.LogTransport{}, nil
	default:
		return mail.NewSMTPTransport(mail.SMTPConfig{
			Host:   cfg.Host,
			Port:   cfg.Port,
			User:   cfg.User,
			Pass:   cfg.Pass,
			Secure: cfg.Secure,
		})
	}
}

func logLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
