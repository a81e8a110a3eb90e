package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	pb "clinic-scheduler/internal/api/v1"
	"clinic-scheduler/internal/booking"
	"clinic-scheduler/internal/calendar"
	"clinic-scheduler/internal/config"
	"clinic-scheduler/internal/dispatch"
	"clinic-scheduler/internal/engine"
	gweb "clinic-scheduler/internal/grpcweb"
	"clinic-scheduler/internal/handler"
	"clinic-scheduler/internal/logger"
	"clinic-scheduler/internal/mail"
	"clinic-scheduler/internal/metrics"
	"clinic-scheduler/internal/middleware"
	"clinic-scheduler/internal/reminder"
	"clinic-scheduler/internal/store"
	"clinic-scheduler/internal/store/memstore"
)

// repository is everything the services need from persistence. Both the
// postgres store and the in-memory store satisfy it.
type repository interface {
	handler.Store
	booking.Store
	reminder.Store
	calendar.Source
	dispatch.AppointmentWriter
	dispatch.PatientStore
	dispatch.NotificationWriter
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mc := metrics.NewCollector("clinic", reg)

	repo, closeRepo, err := openRepository(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer closeRepo()

	transport, closeTransport := mailTransport(cfg.Mail, zl)
	defer closeTransport()
	mailer := mail.NewMailer(mail.NewTemplateEngine(), transport, mail.Options{
		From:            cfg.Mail.From,
		BreakerFailures: cfg.Mail.BreakerFailures,
		BreakerTimeout:  cfg.Mail.BreakerTimeout,
	}, zl.Named("mail"), mc)

	exec := dispatch.New(repo, repo, repo, mailer, zl.Named("dispatch"), mc)

	sched, err := booking.ScheduleFrom(cfg.Schedule)
	if err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	h := handler.New(handler.Deps{
		Store:    repo,
		Engine:   engine.NewService(repo, exec, zl.Named("engine"), mc),
		Booking:  booking.NewService(repo, exec, sched, zl.Named("booking"), mc),
		Calendar: calendar.New(repo, zl.Named("calendar")),
		Secret:   cfg.JWTSecret,
		Log:      zl.Named("handler"),
	})

	if cfg.Reminder.Enabled {
		sw := reminder.NewSweeper(repo, exec, cfg.Reminder.Interval, zl.Named("reminder"), mc)
		go sw.Run(ctx)
	}

	rl := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go rl.Run(ctx)

	srv := grpc.NewServer(
		grpc.ForceServerCodec(pb.Codec{}),
		grpc.ChainUnaryInterceptor(
			middleware.Observe(zl.Named("rpc"), mc),
			middleware.RateLimit(rl),
			middleware.Auth(cfg.JWTSecret),
		),
	)
	pb.RegisterClinicServiceServer(srv, h)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	errc := make(chan error, 2)
	go func() {
		zl.Info("grpc listening", zap.String("addr", lis.Addr().String()))
		errc <- srv.Serve(lis)
	}()

	// grpc-web bridge forwards browser requests to grpc on localhost
	bridge, err := gweb.Dial("localhost:"+cfg.GRPCPort, zl.Named("grpcweb"), gweb.WithOrigins(cfg.AllowedOrigins...))
	if err != nil {
		return err
	}
	defer bridge.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", mc.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
	mux.Handle("/", bridge.Handler())

	httpSrv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zl.Info("grpc-web listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		zl.Info("shutting down")
	case err := <-errc:
		zl.Error("listener failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("http shutdown", zap.Error(err))
	}
	srv.GracefulStop()
	return nil
}

func openRepository(ctx context.Context, cfg *config.Config, zl *zap.Logger) (repository, func(), error) {
	if cfg.DatabaseURL == "" {
		zl.Warn("DATABASE_URL not set, using in-memory store")
		return memstore.New(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}
	zl.Info("connected to postgres")

	if migration, err := os.ReadFile(cfg.MigrationPath); err != nil {
		zl.Warn("migration file not found, skipping", zap.String("path", cfg.MigrationPath), zap.Error(err))
	} else if _, err := pool.Exec(ctx, string(migration)); err != nil {
		zl.Warn("migration failed", zap.Error(err))
	} else {
		zl.Info("migration applied", zap.String("path", cfg.MigrationPath))
	}

	return store.New(pool), pool.Close, nil
}

func mailTransport(cfg config.MailConfig, zl *zap.Logger) (mail.Transport, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		zl.Info("no mail brokers configured, logging outbound email")
		return mail.LogTransport{Log: zl.Named("outbox")}, func() {}
	}
	t := mail.NewKafkaTransport(cfg.KafkaBrokers, cfg.KafkaTopic)
	zl.Info("mail transport", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	return t, func() {
		if err := t.Close(); err != nil {
			zl.Warn("close mail transport", zap.Error(err))
		}
	}
}
