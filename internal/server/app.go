// Package server wires the gophauth components together: storage, password
// hashing, token signing, the users service, the gRPC API and the metrics
// endpoint. It also handles graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/observability"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/users"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       repomanager.RepositoryManager
	userService *users.Service
	grpcServer  *gs.GRPCServer
	obsServer   *observability.Server
}

// NewApp opens storage, applies migrations and builds every component.
// Logs go to w.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	logger, err := logging.New(w, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	repos, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, repos)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, repos repomanager.RepositoryManager) (*App, error) {
	if err := repos.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	hasher, err := auth.NewPasswordHasher(c.PasswordHashAlgorithm, c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	issuer, err := auth.NewTokenIssuer(auth.SigningConfig{
		Key:    []byte(c.SecretKey),
		TTL:    c.TokenValidityDuration,
		Issuer: c.TokenIssuer,
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	var opts []users.Option
	var obs *observability.Server
	if c.MetricsAddr != "" {
		obs = observability.NewServer(c.MetricsAddr, repos.Ping, logger)
		opts = append(opts, users.WithMetrics(obs.Metrics()))
	}

	us, err := users.NewService(repos.Users(), hasher, issuer, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("users service init error: %w", err)
	}

	grpcServer, err := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, us)
	if err != nil {
		return nil, fmt.Errorf("grpc server init error: %w", err)
	}

	return &App{
		config:      c,
		logger:      logger,
		repos:       repos,
		userService: us,
		grpcServer:  grpcServer,
		obsServer:   obs,
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "Received signal", "signal", sig.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// run starts fn and cancels the whole app when it fails.
func (app *App) run(ctx context.Context, cancelFunc context.CancelFunc, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logging.LogError(ctx, app.logger, name+" stopped with error", err)
		cancelFunc()
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Run serves until ctx is cancelled, a signal arrives or a server fails,
// then closes storage. The first server error is returned.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageBackend)

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.run(ctx, cancelFunc, name, fn); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}

	start("grpc server", app.grpcServer.Run)
	if app.obsServer != nil {
		start("observability server", app.obsServer.Run)
	}

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		logging.LogError(ctx, app.logger, "close storage", err)
	}
	app.logger.Info(ctx, "App stopped")

	return firstErr
}
