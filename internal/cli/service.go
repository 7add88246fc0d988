package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"datalys2/internal/startup"
	"datalys2/pkg/logx"
	"datalys2/pkg/schtasks"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register the server as a logon startup task",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logx.NewConsole(cfg.Logging.Level)
		if err := startup.Install(cmd.Context(), schtasks.NewExecRunner(), log); err != nil {
			return err
		}
		fmt.Printf("Successfully registered '%s' to run on logon.\n", startup.ServerTaskName)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the logon startup task",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logx.NewConsole(cfg.Logging.Level)
		if err := startup.Remove(cmd.Context(), schtasks.NewExecRunner(), log); err != nil {
			return err
		}
		fmt.Printf("Successfully removed '%s'.\n", startup.ServerTaskName)
		return nil
	},
}
