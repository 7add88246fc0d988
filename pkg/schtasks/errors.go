package schtasks

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrScriptNotFound  = errors.New("script not found")
	ErrInvalidTime     = errors.New("invalid start time, want 24h HH:MM")
	ErrInvalidInterval = errors.New("minute schedule requires a positive interval")
	ErrToolUnavailable = errors.New("schtasks utility not available")
)

// CommandError reports an invocation that launched but exited non-zero.
// It is the "attempted and failed" half of the error surface; validation
// errors and ErrToolUnavailable mean the attempt never reached the utility.
type CommandError struct {
	Op       string // create, delete, run, query
	TaskName string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = "exit code " + strconv.Itoa(e.ExitCode)
	}
	return "schtasks " + e.Op + " " + e.TaskName + ": " + msg
}
