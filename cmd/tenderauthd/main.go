// Command tenderauthd runs the authentication service: engine plus
// HTTP API over the store selected by the environment.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	authcore "github.com/tendera/authcore"
	"github.com/tendera/authcore/httpapi"
	"github.com/tendera/authcore/logging"
	"github.com/tendera/authcore/notify"
	"github.com/tendera/authcore/store/memory"
	pgstore "github.com/tendera/authcore/store/postgres"
	redisstore "github.com/tendera/authcore/store/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tenderauthd:", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	zl, err := buildLogger(os.Getenv("ENV"))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer zl.Sync()
	log := logging.NewZap(zl)

	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		return errors.New("TOKEN_SECRET is required")
	}

	store, cleanup, err := buildStore(log)
	if err != nil {
		return err
	}
	defer cleanup()

	engine, err := authcore.New().
		WithTokenSecret([]byte(secret)).
		WithUserStore(store).
		WithNotifier(&notify.LogSender{Log: log}).
		WithLogger(log).
		Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	if err := seedAdmin(context.Background(), engine, store, log); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	server := httpapi.NewServer(engine, log)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// buildStore selects the user store by the STORE env var: redis and
// postgres for deployments, memory as the default for development.
func buildStore(log authcore.Logger) (authcore.UserStore, func(), error) {
	noop := func() {}
	switch os.Getenv("STORE") {
	case "redis":
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			return nil, noop, errors.New("REDIS_ADDR is required for the redis store")
		}
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		log.Info("using redis store", "addr", addr)
		return redisstore.New(rdb, os.Getenv("REDIS_PREFIX")), func() { rdb.Close() }, nil

	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return nil, noop, errors.New("DATABASE_URL is required for the postgres store")
		}
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres: %w", err)
		}
		log.Info("using postgres store")
		return pgstore.New(db), func() { db.Close() }, nil

	default:
		log.Info("using in-memory store")
		return memory.New(), noop, nil
	}
}

// seedAdmin creates the bootstrap administrator when the store is empty
// and SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD are set.
func seedAdmin(ctx context.Context, engine *authcore.Engine, store authcore.UserStore, log authcore.Logger) error {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	users, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	otpOff := false
	_, err = engine.Register(ctx, authcore.RegisterInput{
		Name:        "Administrator",
		Email:       email,
		Password:    password,
		Role:        authcore.RoleAdmin,
		EmployeeID:  "ADMIN-0001",
		Department:  "Administration",
		PhoneNumber: "+10000000000",
		Designation: "System Administrator",
		OTPEnabled:  &otpOff,
	})
	if err != nil {
		return err
	}
	log.Info("seed administrator created", "email", email)
	return nil
}
