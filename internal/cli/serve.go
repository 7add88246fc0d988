package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"datalys2/internal/config"
	"datalys2/internal/server"
	"datalys2/pkg/logx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the task server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		mgr := config.NewManager(cfgPath)
		cfg, err := mgr.Load()
		if err != nil {
			return err
		}

		logSvc, log := logx.New(logConfig(cfg))
		defer logSvc.Close()
		mgr.SetLogger(log)

		st, err := openStore(cfg, log)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close()
		}

		srv, err := server.New(server.Options{
			Config: cfg.Server,
			Tasks:  newScheduler(cfg, log),
			Store:  st,
			Log:    log,
		})
		if err != nil {
			return err
		}
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer srv.Stop(context.Background())

		// Live-reload logging settings on config edits. Server and storage
		// changes need a restart; say so instead of half-applying them.
		if err := mgr.Watch(ctx); err != nil {
			log.Warn("config watch unavailable", logx.Err(err))
		}
		sub := mgr.Subscribe(1)
		defer mgr.Unsubscribe(sub)

		for {
			select {
			case <-ctx.Done():
				return nil
			case next, ok := <-sub:
				if !ok {
					return nil
				}
				logSvc.Apply(logConfig(next))
				if next.Server != cfg.Server || next.Storage != cfg.Storage {
					log.Warn("server/storage config changed; restart to apply")
				}
				cfg = next
			}
		}
	},
}

func logConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File != "",
			Path:    cfg.Logging.File,
		},
	}
}
