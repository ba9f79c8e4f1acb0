package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rbxsim/rbxsim/internal/api"
	"github.com/rbxsim/rbxsim/internal/app/funzone"
	"github.com/rbxsim/rbxsim/internal/app/ledger"
	"github.com/rbxsim/rbxsim/internal/app/profile"
	"github.com/rbxsim/rbxsim/internal/domain"
	"github.com/rbxsim/rbxsim/internal/infra/kvstore"
)

// ─── Daemon ─────────────────────────────────────────────────────────────────

// App is the assembled simulator daemon.
type App struct {
	cfg    Config
	logger *zap.Logger

	store   *kvstore.Store
	wallet  *ledger.Coordinator
	funzone *funzone.Service
	profile *profile.Service
	server  *api.Server
}

// New opens the store, builds the services, and restores persisted state.
func New(cfg Config, stateDir string, logger *zap.Logger) (*App, error) {
	dir := cfg.Storage.Dir
	if dir == "" {
		dir = stateDir
	}

	store, err := kvstore.Open(dir)
	if err != nil {
		return nil, err
	}

	now := time.Now
	wallet := ledger.NewCoordinator(store, logger, now, cfg.Wallet.ManualCeiling)
	fz := funzone.NewService(cfg.FunZone, wallet, store, logger, domain.NewSystemRand(), now)
	prof := profile.NewService(store, logger, now)

	ctx := context.Background()
	if err := wallet.Restore(ctx); err != nil {
		store.Close()
		return nil, err
	}
	if err := fz.Restore(ctx); err != nil {
		store.Close()
		return nil, err
	}
	if err := prof.Restore(ctx); err != nil {
		store.Close()
		return nil, err
	}

	server := api.NewServer(wallet, fz, prof, store, logger, now)
	if cfg.API.Metrics {
		server.EnableMetrics()
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		wallet:  wallet,
		funzone: fz,
		profile: prof,
		server:  server,
	}, nil
}

// Run serves the API until ctx is cancelled, then shuts down gracefully:
// stop the listener, drain in-flight persistence, and save a final snapshot.
func (a *App) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", a.cfg.API.Host, a.cfg.API.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("rbxsim daemon listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", zap.Error(err))
	}

	a.close()
	a.logger.Info("rbxsim daemon stopped")
	return nil
}

// close drains persistence, saves a final snapshot, and closes the store.
func (a *App) close() {
	a.wallet.Wait()
	a.funzone.Wait()
	a.profile.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.wallet.Save(ctx); err != nil {
		a.logger.Warn("final wallet save", zap.Error(err))
	}
	if err := a.funzone.Save(ctx); err != nil {
		a.logger.Warn("final fun-zone save", zap.Error(err))
	}
	if err := a.profile.Save(ctx); err != nil {
		a.logger.Warn("final profile save", zap.Error(err))
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warn("close store", zap.Error(err))
	}
}
