package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"datalys2/internal/store"
	"datalys2/pkg/logx"
	"datalys2/pkg/schtasks"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage Windows scheduled tasks directly",
}

func init() {
	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleRemoveCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)
}

// ---- add --------------------------------------------------------------------

var (
	addSchedule string
	addTime     string
	addInterval int
	addForce    bool
	addArgs     []string
)

var scheduleAddCmd = &cobra.Command{
	Use:   "add <name> <script>",
	Short: "Create a new scheduled task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logx.NewConsole(cfg.Logging.Level)

		kind, err := schtasks.ParseScheduleKind(addSchedule)
		if err != nil {
			return err
		}

		spec := schtasks.Spec{
			Name:            args[0],
			ScriptPath:      args[1],
			Kind:            kind,
			StartTime:       addTime,
			IntervalMinutes: addInterval,
			Args:            addArgs,
			Force:           addForce,
		}
		sched := newScheduler(cfg, log)
		if err := sched.Create(cmd.Context(), spec); err != nil {
			return err
		}
		fmt.Printf("Task '%s' scheduled successfully.\n", args[0])

		// Write-through record for the dashboard; failure is a warning, the
		// OS scheduler already holds the task.
		st, err := openStore(cfg, log)
		if err != nil {
			log.Warn("record store unavailable", logx.Err(err))
			return nil
		}
		if st == nil {
			return nil
		}
		defer st.Close()
		script, _ := filepath.Abs(args[1])
		rec := store.TaskRecord{
			Name:            schtasks.Qualify(args[0]),
			ScriptPath:      script,
			ScheduleKind:    string(kind),
			StartTime:       addTime,
			IntervalMinutes: addInterval,
			Description:     "Scheduled via CLI",
		}
		if err := st.UpsertTask(cmd.Context(), rec); err != nil {
			log.Warn("saving task record failed", logx.Err(err))
		}
		return nil
	},
}

func init() {
	scheduleAddCmd.Flags().StringVar(&addSchedule, "schedule", "DAILY", "schedule kind: DAILY, HOURLY, MINUTE, ONCE, ONLOGON")
	scheduleAddCmd.Flags().StringVar(&addTime, "time", "", "start time (HH:MM)")
	scheduleAddCmd.Flags().IntVar(&addInterval, "interval", 0, "interval in minutes (MINUTE schedule)")
	scheduleAddCmd.Flags().BoolVar(&addForce, "force", false, "overwrite an existing task")
	scheduleAddCmd.Flags().StringArrayVar(&addArgs, "args", nil, "arguments to pass to the script")
}

// ---- list -------------------------------------------------------------------

var listPattern string

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sched := newScheduler(cfg, logx.NewConsole(cfg.Logging.Level))

		tasks, err := sched.List(cmd.Context(), listPattern)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Println("No matching tasks found.")
			return nil
		}
		fmt.Printf("%-40s %-25s %-15s\n", "Task Name", "Next Run Time", "Status")
		fmt.Println(strings.Repeat("-", 80))
		for _, t := range tasks {
			name := t.TaskName()
			if i := strings.LastIndex(name, `\`); i >= 0 {
				name = name[i+1:]
			}
			fmt.Printf("%-40s %-25s %-15s\n", name, t.Get("Next Run Time"), t.Get("Status"))
		}
		return nil
	},
}

func init() {
	scheduleListCmd.Flags().StringVar(&listPattern, "pattern", "*", "filter tasks by name (substring)")
}

// ---- remove -----------------------------------------------------------------

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a scheduled task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logx.NewConsole(cfg.Logging.Level)

		sched := newScheduler(cfg, log)
		if err := sched.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Task '%s' deleted.\n", args[0])

		if st, err := openStore(cfg, log); err == nil && st != nil {
			defer st.Close()
			if err := st.DeleteTask(cmd.Context(), schtasks.Qualify(args[0])); err != nil {
				log.Warn("deleting task record failed", logx.Err(err))
			}
		}
		return nil
	},
}

// ---- run --------------------------------------------------------------------

var scheduleRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Manually run a scheduled task now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sched := newScheduler(cfg, logx.NewConsole(cfg.Logging.Level))
		if err := sched.RunNow(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Task '%s' triggered.\n", args[0])
		return nil
	},
}
