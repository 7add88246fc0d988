package schtasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result captures one finished utility invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes the scheduling utility with an argument vector and blocks
// until it exits. A non-zero exit is a normal Result, not an error; the error
// return is reserved for failing to launch the tool at all. No timeout, no
// retry: every operation is attempted exactly once.
type Runner interface {
	Run(ctx context.Context, args ...string) (Result, error)
}

type execRunner struct {
	bin string
}

// NewExecRunner returns a Runner that shells out to the real schtasks binary.
func NewExecRunner() Runner { return execRunner{bin: "schtasks"} }

func (r execRunner) Run(ctx context.Context, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, r.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return Result{}, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}
	return res, nil
}
