package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/studyhall/internal/jobs"
	"github.com/abhisek/studyhall/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the progression and review HTTP API",
	RunE: withRuntime(false, func(cmd *cobra.Command, args []string, rt *runtime) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scfg := rt.cfg.Server
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			scfg.Addr = addr
		}

		sched := jobs.New(rt.log)
		if scfg.CatalogRefresh > 0 {
			if err := sched.Every("badge-catalog-refresh", scfg.CatalogRefresh,
				jobs.RefreshCatalog(rt.prog.Catalog(), rt.log)); err != nil {
				return err
			}
		}

		srv := server.New(server.Config{
			Addr:           scfg.Addr,
			AllowedOrigins: scfg.AllowedOrigins,
			ServiceName:    "studyhall",
		}, rt.prog, rt.reviews, rt.log)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Run(gctx)
		})
		g.Go(func() error {
			sched.Start()
			<-gctx.Done()
			sched.Stop()
			return nil
		})

		rt.log.Info("studyhall serving", "addr", scfg.Addr, "jobs", sched.Len())
		err := g.Wait()
		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}),
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides STUDYHALL_ADDR)")
}
