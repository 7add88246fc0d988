// Package cli implements the datalys2 command line using cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datalys2/internal/config"
	"datalys2/internal/store"
	"datalys2/pkg/logx"
	"datalys2/pkg/schtasks"
)

var cfgPath string

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:           "datalys2",
	Short:         "datalys2 — task server and Windows scheduler front end",
	Long:          "datalys2 — register scripts as Windows scheduled tasks and serve a local dashboard over them",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "./datalys_config.json", "path to config file (json or yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func loadConfig() (*config.Config, error) {
	return config.NewManager(cfgPath).Load()
}

func newScheduler(cfg *config.Config, log logx.Logger) *schtasks.Scheduler {
	return schtasks.New(schtasks.Options{
		Executor: cfg.Scheduler.Executor,
		Author:   cfg.Scheduler.Author,
		Log:      log,
	})
}

func openStore(cfg *config.Config, log logx.Logger) (store.Store, error) {
	busy, err := cfg.Storage.BusyTimeoutDuration()
	if err != nil {
		return nil, err
	}
	return store.Open(store.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, log)
}
