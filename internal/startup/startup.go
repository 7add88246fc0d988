// Package startup registers the task server itself as a logon-triggered job,
// so the dashboard comes up with the user session.
package startup

import (
	"context"
	"fmt"
	"os"

	"datalys2/pkg/logx"
	"datalys2/pkg/schtasks"
)

// ServerTaskName is the logon task that launches the API server. It lives at
// the scheduler root, not under the task folder: it is infrastructure, not a
// user-declared job, and must survive bulk operations on the folder.
const ServerTaskName = "Datalys2Server"

// Install registers the current binary's "serve" command to run at logon.
// The plain /SC form is used here instead of an XML document: the server task
// needs no custom trigger shape or settings.
func Install(ctx context.Context, runner schtasks.Runner, log logx.Logger) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving own binary: %w", err)
	}

	tr := fmt.Sprintf(`"%s" serve`, exe)
	res, err := runner.Run(ctx, "/Create", "/SC", "ONLOGON", "/TN", ServerTaskName, "/TR", tr, "/F")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &schtasks.CommandError{Op: "create", TaskName: ServerTaskName, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	log.Info("server registered for logon start", logx.String("task", ServerTaskName), logx.String("command", tr))
	return nil
}

// Remove unregisters the logon task.
func Remove(ctx context.Context, runner schtasks.Runner, log logx.Logger) error {
	res, err := runner.Run(ctx, "/Delete", "/TN", ServerTaskName, "/F")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &schtasks.CommandError{Op: "delete", TaskName: ServerTaskName, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	log.Info("logon task removed", logx.String("task", ServerTaskName))
	return nil
}
