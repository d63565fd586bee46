package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/config"
	"github.com/abhisek/studyhall/internal/lock"
	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/progression"
	"github.com/abhisek/studyhall/internal/review"
	"github.com/abhisek/studyhall/internal/store"
)

// runtime is everything a command needs: configuration, the store, the
// lock backend and the services built on top of them.
type runtime struct {
	cfg     config.Config
	user    string
	log     *logger.Logger
	store   *store.Store
	prog    *progression.Service
	reviews *review.Service
	closers []io.Closer
}

// newRuntime loads the configuration, opens the store, seeds the badge
// catalog and builds the services. A quiet runtime discards logs, for
// commands that own the terminal.
func newRuntime(cmd *cobra.Command, quiet bool) (*runtime, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	envFile, _ := cmd.Flags().GetString("env")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		cfg.User = u
	}

	log := logger.Nop()
	if !quiet {
		if log, err = logger.New(cfg.LogMode); err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
	}

	rt := &runtime{cfg: cfg, user: cfg.User, log: log}
	if err := rt.open(ctx, cmd); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) open(ctx context.Context, cmd *cobra.Command) error {
	dsn, err := resolveDSN(cmd, rt.cfg.Store.Driver, rt.cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("resolve database: %w", err)
	}
	st, err := store.OpenDriver(ctx, rt.cfg.Store.Driver, dsn)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	rt.store = st
	rt.closers = append(rt.closers, st)

	if err := st.SeedCatalog(ctx, progression.DefaultCatalog()); err != nil {
		return fmt.Errorf("seed badge catalog: %w", err)
	}

	var locks lock.Locker = lock.NewLocal()
	if rt.cfg.Lock.Backend == config.LockRedis {
		rl, err := lock.NewRedis(ctx, rt.cfg.Lock.Redis)
		if err != nil {
			return fmt.Errorf("connect lock backend: %w", err)
		}
		rt.closers = append(rt.closers, rl)
		locks = rl
	}

	rt.prog = progression.NewService(st, locks, rt.log, rt.cfg.Progression)
	rt.reviews = review.NewService(st, rt.prog, locks, rt.log, rt.cfg.Review)
	rt.log.Debug("runtime ready", "driver", rt.cfg.Store.Driver, "lock", rt.cfg.Lock.Backend, "user", rt.user)
	return nil
}

// Close releases everything newRuntime opened, newest first.
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	rt.log.Sync()
	return errors.Join(errs...)
}

// withRuntime adapts a command body that needs a runtime.
func withRuntime(quiet bool, fn func(cmd *cobra.Command, args []string, rt *runtime) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, quiet)
		if err != nil {
			return err
		}
		defer rt.Close()
		return fn(cmd, args, rt)
	}
}
